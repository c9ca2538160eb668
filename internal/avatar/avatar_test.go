package avatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const origin = "https://api.example.ma"

func TestResolve(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"placeholder", "default-avatar.png", ""},
		{"placeholder path", "/uploads/avatars/default-avatar.png", ""},
		{"absolute upload path", "/uploads/avatars/a.png", origin + "/uploads/avatars/a.png"},
		{"relative upload path", "uploads/avatars/a.png", origin + "/uploads/avatars/a.png"},
		{"http", "http://cdn.example.com/a.png", "http://cdn.example.com/a.png"},
		{"https", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"bare filename", "a.png", origin + "/uploads/avatars/a.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.in, origin+"/"))
		})
	}
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "?", Initials(""))
	assert.Equal(t, "?", Initials("   "))
	assert.Equal(t, "JD", Initials("John Doe"))
	assert.Equal(t, "J", Initials("john"))
	assert.Equal(t, "AB", Initials("amal  ben  chakir"))
	assert.Equal(t, "ÉZ", Initials("élodie zahra"))
}

func TestColor(t *testing.T) {
	assert.Equal(t, Palette[0], Color(""))
	assert.Equal(t, Color("Alice"), Color("Amine"))
	assert.Equal(t, Palette['J'%8], Color("John"))
	assert.NotEqual(t, Color("Alice"), Color("Bob"))
}

func TestRenderAndFallback(t *testing.T) {
	a := Render("Salma Idrissi", "me.png", origin)
	assert.True(t, a.HasImage())
	assert.Equal(t, "SI", a.Initials)

	fb := a.Fallback()
	assert.False(t, fb.HasImage())
	assert.Equal(t, a.Initials, fb.Initials)
	assert.Equal(t, a.Color, fb.Color)

	assert.False(t, Render("", "", origin).HasImage())
}

package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0612345678", true},
		{"0712345678", true},
		{"212612345678", true},
		{"+212612345678", true},
		{"00212712345678", true},
		{"612345678", true},
		{"06 12 34 56 78", true},
		{"0512345678", false},
		{"123456", false},
		{"", false},
		{"06123456789", false},
		{"212512345678", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, IsValid(tc.in), tc.in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "612345678", Normalize("0612345678"))
	assert.Equal(t, "712345678", Normalize("+212 7-12-34-56-78"))
	assert.Equal(t, "", Normalize("0512345678"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "+212 612-345678", Format("0612345678"))
	assert.Equal(t, "+212 712-345678", Format("212712345678"))
	assert.Equal(t, "123", Format("123"))
}

func TestE164(t *testing.T) {
	assert.Equal(t, "+212612345678", E164("06 12 34 56 78"))
	assert.Equal(t, "", E164("nope"))
}

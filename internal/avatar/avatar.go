// Package avatar turns stored avatar values into displayable URLs and
// builds the initials fallback.
package avatar

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultPlaceholder is the server's stock image; it renders as the
// initials fallback.
const DefaultPlaceholder = "default-avatar.png"

// Palette holds the background classes for the initials fallback.
var Palette = [8]string{
	"bg-red-500",
	"bg-orange-500",
	"bg-amber-500",
	"bg-green-500",
	"bg-teal-500",
	"bg-blue-500",
	"bg-indigo-500",
	"bg-pink-500",
}

// Resolve maps a stored value to an absolute URL on origin. It returns ""
// when the initials fallback should be shown instead.
func Resolve(value, origin string) string {
	value = strings.TrimSpace(value)
	origin = strings.TrimRight(origin, "/")

	switch {
	case value == "" || strings.HasSuffix(value, DefaultPlaceholder):
		return ""
	case strings.HasPrefix(value, "/uploads/"):
		return origin + value
	case strings.HasPrefix(value, "uploads/"):
		return origin + "/" + value
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return value
	default:
		return origin + "/uploads/avatars/" + value
	}
}

// Initials takes the first letter of up to two words, uppercased.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "?"
	}
	if len(words) > 2 {
		words = words[:2]
	}

	var b strings.Builder
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Color picks a palette entry from the name's first character.
func Color(name string) string {
	if name == "" {
		return Palette[0]
	}
	r, _ := utf8.DecodeRuneInString(name)
	return Palette[int(r)%len(Palette)]
}

type Avatar struct {
	URL      string
	Initials string
	Color    string
}

func (a Avatar) HasImage() bool { return a.URL != "" }

// Fallback drops the image; used when it fails to load.
func (a Avatar) Fallback() Avatar {
	a.URL = ""
	return a
}

func Render(name, value, origin string) Avatar {
	return Avatar{
		URL:      Resolve(value, origin),
		Initials: Initials(name),
		Color:    Color(name),
	}
}

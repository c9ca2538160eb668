// Package phone validates and formats Moroccan mobile numbers.
package phone

import (
	"regexp"
	"strings"
)

// local 06/07, international 212 (optionally +/00), or the bare
// 9-digit national number starting with 6 or 7
var mobilePattern = regexp.MustCompile(`^(?:(?:\+|00)?212|0)?([67]\d{8})$`)

var separators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// IsValid reports whether s is a Moroccan mobile number.
func IsValid(s string) bool {
	return mobilePattern.MatchString(clean(s))
}

// Normalize returns the bare 9-digit national number, or "" when s is not
// a valid mobile number.
func Normalize(s string) string {
	m := mobilePattern.FindStringSubmatch(clean(s))
	if m == nil {
		return ""
	}
	return m[1]
}

// Format renders a valid number as "+212 612-345678". Invalid input is
// returned unchanged.
func Format(s string) string {
	n := Normalize(s)
	if n == "" {
		return s
	}
	return "+212 " + n[:3] + "-" + n[3:]
}

// E164 returns "+212XXXXXXXXX", the form delivery gateways expect.
func E164(s string) string {
	n := Normalize(s)
	if n == "" {
		return ""
	}
	return "+212" + n
}

func clean(s string) string {
	return separators.Replace(strings.TrimSpace(s))
}

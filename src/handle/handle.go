// Package handle recognises Discord handles of the form Name#1234.
package handle

import (
	"regexp"
	"strings"
)

// Classification is the result of checking free text against the handle grammar.
type Classification int

const (
	Absent Classification = iota
	Invalid
	Valid
)

func (c Classification) String() string {
	switch c {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "absent"
	}
}

// The body may hold anything except @ # : and backticks. Reserved bodies are
// rejected separately since RE2 has no lookahead.
var pattern = regexp.MustCompile("^([^@#:`]{2,32})#([0-9]{4})$")

var reserved = []string{"discordtag", "everyone", "here"}

// Classify reports whether text, once trimmed, is a well-formed Discord handle.
func Classify(text string) Classification {
	text = strings.TrimSpace(text)
	if text == "" {
		return Absent
	}

	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Invalid
	}
	for _, word := range reserved {
		if strings.EqualFold(m[1], word) {
			return Invalid
		}
	}
	return Valid
}

// IsValid is shorthand for Classify(text) == Valid.
func IsValid(text string) bool {
	return Classify(text) == Valid
}

// Split breaks a valid handle into its name and discriminator.
func Split(h string) (name, discriminator string, ok bool) {
	h = strings.TrimSpace(h)
	if Classify(h) != Valid {
		return "", "", false
	}
	m := pattern.FindStringSubmatch(h)
	return m[1], m[2], true
}

// Format joins a Discord username and discriminator the way the gateway
// reports them.
func Format(username, discriminator string) string {
	return username + "#" + discriminator
}

// SameAuthor compares forum author labels. Forum names are not case sensitive,
// unlike Discord handles.
func SameAuthor(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

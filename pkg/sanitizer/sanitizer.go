package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
	reTrimUnderscores   = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeCategory normalizes equipment categories and locations into a
// single comparable token: "3D Printer" becomes "3d_printer".
func SanitizeCategory(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}

// SanitizeContact normalizes a requester contact. Phone-shaped input is
// converted to E.164; anything else (email, extension) is trimmed as-is.
func SanitizeContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return ""
	}

	if looksLikePhone(contact) {
		if normalized := NormalizePhone(contact); normalized != "" {
			return normalized
		}
	}

	return contact
}

var rePhoneShape = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)

func looksLikePhone(s string) bool {
	return rePhoneShape.MatchString(s)
}

package domain

import "strings"

// PostalCodeLength is the number of digits in a Brazilian CEP.
const PostalCodeLength = 8

// NormalizePostalCode strips every non-digit from code.
// The second return value is false unless exactly eight digits remain.
func NormalizePostalCode(code string) (string, bool) {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	norm := b.String()
	return norm, len(norm) == PostalCodeLength
}

// Structured address returned by a postal-code lookup.
type PostalAddress struct {
	PostalCode   string
	Street       string
	Neighborhood string
	City         string
	State        string
}

// Query builds the free-text geocoding query: non-empty components joined
// with ", " followed by the country suffix.
func (a PostalAddress) Query(country string) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.Neighborhood, a.City, a.State, country} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

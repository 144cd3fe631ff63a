package commerce

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Generic lead-in words stripped before catalog matching, longest first so
// compound phrases win over their components.
var genericPrefixes = []string{
	"specialty test of",
	"specialty",
	"test",
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes combining diacritical marks ("café" becomes "cafe").
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeForSearch canonicalizes a name or query for catalog matching:
// lowercase, accents stripped, generic lead-in words removed, whitespace
// collapsed.
func NormalizeForSearch(s string) string {
	s = strings.ToLower(StripAccents(s))
	for _, prefix := range genericPrefixes {
		s = strings.ReplaceAll(s, prefix, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}

// MatchesName reports whether query matches name under the three-step
// matching order: cleaned query inside cleaned name, cleaned name inside
// cleaned query, then raw query inside raw name (both lowercased).
func MatchesName(query, name string) bool {
	cq := NormalizeForSearch(query)
	cn := NormalizeForSearch(name)
	if cq != "" && cn != "" {
		if strings.Contains(cn, cq) || strings.Contains(cq, cn) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

// PickVariation chooses the variation whose attribute values contain the
// model preference, case-insensitively. Falls back to the first variation
// when nothing matches or no preference was given.
func PickVariation(p *Product, modelPreference string) *Variation {
	if len(p.Variations) == 0 {
		return nil
	}
	if modelPreference != "" {
		pref := strings.ToLower(modelPreference)
		for i := range p.Variations {
			for _, val := range p.Variations[i].Attributes {
				if strings.Contains(strings.ToLower(val), pref) {
					return &p.Variations[i]
				}
			}
		}
	}
	return &p.Variations[0]
}

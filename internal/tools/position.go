package tools

import (
	"regexp"
	"strconv"
	"strings"
)

// PositionMatcher tries to read a 1-based cart position out of a free-form
// identifier. Matchers are evaluated in a fixed priority order; the first one
// that parses wins.
type PositionMatcher interface {
	TryParse(identifier string) (int, bool)
}

// positionMatchers in priority order: bare integer, ordinal word, roman
// numeral, integer with ordinal marker, positional noun phrase.
var positionMatchers = []PositionMatcher{
	integerMatcher{},
	ordinalWordMatcher{},
	romanNumeralMatcher{},
	markedOrdinalMatcher{},
	positionNounMatcher{},
}

// ParsePosition runs the matcher chain over a trimmed, lowercased identifier.
func ParsePosition(identifier string) (int, bool) {
	id := strings.ToLower(strings.TrimSpace(identifier))
	for _, m := range positionMatchers {
		if pos, ok := m.TryParse(id); ok {
			return pos, true
		}
	}
	return 0, false
}

type integerMatcher struct{}

func (integerMatcher) TryParse(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

var ordinalWords = map[string]int{
	"first":   1,
	"second":  2,
	"third":   3,
	"fourth":  4,
	"fifth":   5,
	"sixth":   6,
	"seventh": 7,
	"eighth":  8,
	"ninth":   9,
	"tenth":   10,
}

type ordinalWordMatcher struct{}

func (ordinalWordMatcher) TryParse(id string) (int, bool) {
	n, ok := ordinalWords[id]
	return n, ok
}

var romanNumerals = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5,
	"vi": 6, "vii": 7, "viii": 8, "ix": 9, "x": 10,
}

type romanNumeralMatcher struct{}

func (romanNumeralMatcher) TryParse(id string) (int, bool) {
	n, ok := romanNumerals[id]
	return n, ok
}

// markedOrdinalMatcher handles "3rd", "2nd", "1st", "4th" and the ordinal
// indicator forms "3º"/"3°".
var markedOrdinalRe = regexp.MustCompile(`^(\d+)\s*(?:st|nd|rd|th|º|°)$`)

type markedOrdinalMatcher struct{}

func (markedOrdinalMatcher) TryParse(id string) (int, bool) {
	m := markedOrdinalRe.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// positionNounMatcher handles "item 3", "number 2", "position 1".
var positionNounRe = regexp.MustCompile(`^(?:item|number|position)\s+(\d+)$`)

type positionNounMatcher struct{}

func (positionNounMatcher) TryParse(id string) (int, bool) {
	m := positionNounRe.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

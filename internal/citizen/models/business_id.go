package models

import "strings"

// DefaultBusinessIDPrefix is the national prefix printed on cards.
const DefaultBusinessIDPrefix = "ET-"

const prefixSeparators = "-_ /"

// BusinessKeyNormalizer turns a citizen_id as typed by a person into the
// canonical lookup key: trimmed, upper-cased, with the optional prefix removed.
// "et-123456", "ET 123456" and "123456" all normalise to "123456". The prefix
// letters alone are part of the id: "ETA100" stays "ETA100".
type BusinessKeyNormalizer struct {
	prefix string
	bare   string
}

// NewBusinessKeyNormalizer builds a normaliser for the given prefix. An empty
// prefix disables stripping.
func NewBusinessKeyNormalizer(prefix string) BusinessKeyNormalizer {
	p := strings.ToUpper(strings.TrimSpace(prefix))
	return BusinessKeyNormalizer{
		prefix: p,
		bare:   strings.TrimRight(p, prefixSeparators),
	}
}

// Normalize returns the canonical key for input. Blank input yields "".
func (n BusinessKeyNormalizer) Normalize(input string) string {
	key := strings.ToUpper(strings.TrimSpace(input))
	switch {
	case n.prefix != "" && strings.HasPrefix(key, n.prefix):
		key = strings.TrimPrefix(key, n.prefix)
	case n.bare != "" && len(key) > len(n.bare) && strings.HasPrefix(key, n.bare) &&
		strings.ContainsRune(prefixSeparators, rune(key[len(n.bare)])):
		key = strings.TrimLeft(key[len(n.bare):], prefixSeparators)
	}
	return strings.TrimSpace(key)
}

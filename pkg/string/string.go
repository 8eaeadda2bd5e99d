// Package string holds the small string helpers shared by request DTOs and
// validation messages.
package string

import (
	"strings"
	"unicode"
)

// TrimStrings trims each target in place.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// TrimPtrs trims optional fields in place; nil pointers are left alone.
func TrimPtrs(ss ...*string) {
	for _, s := range ss {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// LowerPtr lower-cases an optional field in place.
func LowerPtr(s *string) {
	if s != nil {
		*s = strings.ToLower(*s)
	}
}

func TrimSlice(ss []string) {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
}

// ToSnakeCase converts Go field names to JSON-style names, e.g.
// "CitizenID" -> "citizen_id".
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Package privacy reduces personal identifiers before they reach logs.
package privacy

import (
	"net/netip"
	"strings"
	"unicode/utf8"
)

// AnonymizeIP keeps the /24 of an IPv4 address or the /48 of an IPv6 one.
// Empty input yields "unknown" and unparseable input "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// MaskIdentifier hides all but the last three characters of a citizen_id or
// similar lookup key, e.g. "ET-123456" -> "******456".
func MaskIdentifier(s string) string {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n <= 3 {
		return strings.Repeat("*", n)
	}
	runes := []rune(s)
	return strings.Repeat("*", n-3) + string(runes[n-3:])
}

package table

import (
	"fmt"
	"strings"
)

// SanitizeIdentifier transliterates an arbitrary file-derived name into a
// valid SQL identifier: every non-alphanumeric rune becomes an underscore
// and a leading digit is prefixed. Sanitizing an already-sanitized name
// returns it unchanged.
func SanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" {
		return "t"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "t_" + id
	}
	return id
}

// DisambiguateName appends the smallest numeric suffix that makes name
// unused according to taken. The base name itself is tried first, so the
// result is deterministic for a given registry state.
func DisambiguateName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

package domain

import (
	"strconv"
	"strings"
)

// composeKey joins parts under a kind prefix. Each part is length-prefixed, so
// ids containing the separator cannot make two different tuples collide.
func composeKey(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range parts {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

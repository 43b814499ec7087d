package ifjcode

import (
	"fmt"
	"strings"
)

// Escape converts raw string contents to the body of a string@ literal.
// Whitespace, control characters, '#', '\\' and '"' become \ddd decimal escapes.
func Escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r <= 32 || r == 127 || r == '#' || r == '\\' || r == '"' {
			fmt.Fprintf(&sb, "\\%03d", r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

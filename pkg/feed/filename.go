package feed

import "strings"

// FormatImageFilename derives a safe download filename from a photo
// description: lowercased, whitespace runs collapsed to a single
// underscore, everything outside [a-z0-9_] dropped.
func FormatImageFilename(description string) string {
	lowered := strings.ToLower(description)

	var b strings.Builder
	b.Grow(len(lowered))
	inSpace := false
	for _, r := range lowered {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			inSpace = false
		default:
			inSpace = false
		}
	}
	return b.String()
}

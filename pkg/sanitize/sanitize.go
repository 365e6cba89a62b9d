// Package sanitize turns untrusted titles and identifiers into strings
// that are safe to use as file names.
package sanitize

import (
	"strings"

	"github.com/google/uuid"
)

// MaxLength is the maximum number of characters kept in a sanitized name.
const MaxLength = 100

const reserved = `<>:"/\|?*`

// Filename removes path separators, shell metacharacters and control
// characters from name, truncates it to MaxLength characters and trims
// surrounding whitespace. When nothing survives, a fresh UUID is returned
// so concurrent requests never collide on an empty name.
func Filename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(reserved, r) {
			continue
		}
		b.WriteRune(r)
	}

	runes := []rune(b.String())
	if len(runes) > MaxLength {
		runes = runes[:MaxLength]
	}

	cleaned := strings.TrimSpace(string(runes))
	if cleaned == "" {
		return uuid.New().String()
	}
	return cleaned
}

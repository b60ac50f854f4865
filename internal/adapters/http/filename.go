package http

import (
	"regexp"
	"strings"
)

var nonWordChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeFilenameBase turns a monument display name into a safe download
// filename base: the location part before " - ", with every character
// outside [A-Za-z0-9_-] stripped, capped at 30 characters. A name that
// sanitizes to nothing falls back to fallback.
func SanitizeFilenameBase(displayName, fallback string) string {
	base := displayName
	if i := strings.Index(base, " - "); i >= 0 {
		base = base[:i]
	}

	base = nonWordChars.ReplaceAllString(base, "")

	if len(base) > 30 {
		base = base[:30]
	}
	if base == "" {
		return fallback
	}
	return base
}

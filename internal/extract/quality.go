package extract

import (
	"regexp"
	"strings"
)

// MinMeaningfulChars is the floor below which extracted text never advances
// past the gate.
const MinMeaningfulChars = 50

// reNoise matches text made only of whitespace, digits, hyphens and the page
// marker tokens "of"/"Of" — artifacts like "Page 1 of 12" with no content.
var reNoise = regexp.MustCompile(`^[\s\d\-]*(?:[oO]f[\s\d\-]*)*$`)

// IsMeaningful is the sole gate deciding whether the cascade advances to the
// next fallback. Pure and deterministic.
func IsMeaningful(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinMeaningfulChars {
		return false
	}
	return !reNoise.MatchString(trimmed)
}

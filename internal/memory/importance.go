package memory

import (
	"strings"
	"unicode/utf8"

	"github.com/Little-pure-light/language-Model/internal/emotion"
)

// ComputeImportance scores a user message from its length, emotion keywords and intensity.
// The score has no upper bound.
func ComputeImportance(userMessage string, analysis emotion.Analysis) float64 {
	lengthScore := float64(utf8.RuneCountInString(userMessage)/20) * 0.1

	lowered := strings.ToLower(userMessage)
	hits := 0
	for _, kw := range emotion.Keywords() {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			hits++
		}
	}

	return lengthScore + float64(hits)*0.3 + analysis.Intensity
}

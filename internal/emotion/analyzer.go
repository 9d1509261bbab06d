package emotion

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	baseIntensity    = 0.5
	maxIntensity     = 2.0
	patternWeight    = 1.5
	singleConfidence = 0.8
)

var (
	repeatedBang     = regexp.MustCompile(`!!+`)
	interrobangBurst = regexp.MustCompile(`\?!+`)
)

// Analyzer classifies text against the built-in emotion lexicon.
type Analyzer struct {
	entries []entry
}

// NewAnalyzer returns an Analyzer using the built-in dictionary.
func NewAnalyzer() *Analyzer {
	return &Analyzer{entries: dictionary}
}

// Analyze returns the emotion distribution of text.
func (a *Analyzer) Analyze(text string) Analysis {
	if text == "" {
		return NeutralAnalysis()
	}

	lowered := strings.ToLower(text)
	scores := make(map[Emotion]float64, len(a.entries))
	var total float64
	for _, e := range a.entries {
		score := rawScore(e, text, lowered)
		if score <= 0 {
			continue
		}
		scores[e.emotion] = score
		total += score
	}
	if len(scores) == 0 {
		return NeutralAnalysis()
	}

	normalized := make(map[Emotion]float64, len(scores))
	dominant := EmotionNeutral
	best := -1.0
	for _, e := range a.entries {
		score, ok := scores[e.emotion]
		if !ok {
			continue
		}
		weight := score / total
		normalized[e.emotion] = weight
		// strict comparison keeps the first-declared emotion on ties
		if weight > best {
			best = weight
			dominant = e.emotion
		}
	}

	confidence := singleConfidence
	if len(normalized) > 1 {
		confidence = best
	}

	intensity := a.Intensity(text)
	if intensity > 1.0 {
		intensity = 1.0
	}

	return Analysis{
		DominantEmotion: dominant,
		Emotions:        normalized,
		Intensity:       intensity,
		Confidence:      confidence,
	}
}

func rawScore(e entry, text, lowered string) float64 {
	var score float64
	for _, kw := range e.keywords {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			score++
		}
	}
	for _, pattern := range e.patterns {
		if pattern.MatchString(text) {
			score += patternWeight
		}
	}
	if score == 0 {
		return 0
	}
	for _, in := range e.intensifiers {
		if strings.Contains(lowered, in.trigger) {
			return score * in.factor
		}
	}
	return score
}

// Intensity scores the tone of text from punctuation, casing, repetition and length.
// The result is at most 2.0 and may exceed 1.0.
func (a *Analyzer) Intensity(text string) float64 {
	intensity := baseIntensity

	if repeatedBang.MatchString(text) {
		intensity *= 1.5
	}
	if interrobangBurst.MatchString(text) {
		intensity *= 1.3
	}

	runes := utf8.RuneCountInString(text)
	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if float64(upper) > float64(runes)*0.3 {
		intensity *= 1.3
	}

	if hasRunRepeat(text, 3) {
		intensity *= 1.2
	}

	switch {
	case runes < 10:
		intensity *= 1.1
	case runes > 100:
		intensity *= 0.9
	}

	if intensity > maxIntensity {
		intensity = maxIntensity
	}
	return intensity
}

// hasRunRepeat reports whether any rune occurs at least n times in a row.
// Line breaks never count toward a run.
func hasRunRepeat(text string, n int) bool {
	var prev rune
	run := 0
	for i, r := range text {
		if r == '\n' {
			run = 0
			prev = r
			continue
		}
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}

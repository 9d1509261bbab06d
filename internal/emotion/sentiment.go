package emotion

import "strings"

var (
	positiveWords = []string{"好", "棒", "讚", "開心", "喜歡", "愛", "謝謝"}
	negativeWords = []string{"不好", "糟", "爛", "難過", "討厭", "生氣"}
)

// Sentiment labels a message by counting fixed positive and negative words.
// Ties, including no hits at all, are neutral.
func Sentiment(text string) EmotionLabel {
	pos := countHits(text, positiveWords)
	neg := countHits(text, negativeWords)
	switch {
	case pos > neg:
		return LabelPositive
	case neg > pos:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

package emotion

// Emotion is one of the fixed emotion categories.
type Emotion string

const (
	EmotionJoy      Emotion = "joy"
	EmotionSadness  Emotion = "sadness"
	EmotionAnger    Emotion = "anger"
	EmotionFear     Emotion = "fear"
	EmotionLove     Emotion = "love"
	EmotionTired    Emotion = "tired"
	EmotionConfused Emotion = "confused"
	EmotionGrateful Emotion = "grateful"
	EmotionNeutral  Emotion = "neutral"
)

// EmotionLabel is a coarse sentiment label.
type EmotionLabel string

const (
	LabelPositive EmotionLabel = "Positive"
	LabelNegative EmotionLabel = "Negative"
	LabelNeutral  EmotionLabel = "Neutral"
)

// Analysis is the per-message emotion classification.
type Analysis struct {
	DominantEmotion Emotion             `json:"dominant_emotion"`
	Emotions        map[Emotion]float64 `json:"emotions"`
	// Intensity is reported capped at 1.0; see Analyzer.Intensity for the raw value.
	Intensity  float64 `json:"intensity"`
	Confidence float64 `json:"confidence"`
}

// NeutralAnalysis is returned when nothing in the text matches the dictionary.
func NeutralAnalysis() Analysis {
	return Analysis{
		DominantEmotion: EmotionNeutral,
		Emotions:        map[Emotion]float64{},
		Intensity:       0.5,
		Confidence:      0.0,
	}
}

// Clamp01 bounds a value to [0,1].
func Clamp01(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}

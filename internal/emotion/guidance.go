package emotion

// Guidance returns a short reply guideline for the given emotion.
func Guidance(e Emotion) string {
	switch e {
	case EmotionJoy:
		return "與之共享喜悅，使用更多正面表情符號"
	case EmotionSadness:
		return "提供溫暖安慰，降低能量但提高同理心"
	case EmotionAnger:
		return "保持冷靜理解，避免激化情緒"
	case EmotionConfused:
		return "耐心解釋，提供清晰指導"
	case EmotionGrateful:
		return "謙遜回應，表達溫暖"
	default:
		return ""
	}
}

// guidanceLabels names the user state each guideline applies to.
var guidanceLabels = []struct {
	emotion Emotion
	label   string
}{
	{EmotionJoy, "開心"},
	{EmotionSadness, "難過"},
	{EmotionAnger, "生氣"},
	{EmotionConfused, "困惑"},
	{EmotionGrateful, "感謝"},
}

// GuidanceLines renders every guideline as "當用戶X時：..." lines.
func GuidanceLines() []string {
	out := make([]string, 0, len(guidanceLabels))
	for _, g := range guidanceLabels {
		out = append(out, "當用戶"+g.label+"時："+Guidance(g.emotion))
	}
	return out
}

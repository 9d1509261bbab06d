package emotion

// ResponseStyle describes how a reply should sound for a given analysis.
type ResponseStyle struct {
	Tone            string   `json:"tone"`
	EmojiFrequency  float64  `json:"emoji_frequency"`
	EmpathyLevel    float64  `json:"empathy_level"`
	EnergyLevel     float64  `json:"energy_level"`
	SuggestedEmojis []string `json:"suggested_emojis"`
}

type styleTemplate func(intensity float64) ResponseStyle

var styles = map[Emotion]styleTemplate{
	EmotionJoy: func(i float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "cheerful_enthusiastic",
			EmojiFrequency:  min(0.9, 0.6+i*0.3),
			EmpathyLevel:    0.7,
			EnergyLevel:     min(1.0, 0.6+i*0.4),
			SuggestedEmojis: []string{"😊", "😄", "🎉", "✨", "💛"},
		}
	},
	EmotionSadness: func(i float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "gentle_comforting",
			EmojiFrequency:  min(0.8, 0.4+i*0.4),
			EmpathyLevel:    min(1.0, 0.8+i*0.2),
			EnergyLevel:     max(0.3, 0.6-i*0.3),
			SuggestedEmojis: []string{"🫂", "💙", "✨"},
		}
	},
	EmotionAnger: func(i float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "calm_understanding",
			EmojiFrequency:  max(0.3, 0.6-i*0.3),
			EmpathyLevel:    min(1.0, 0.7+i*0.3),
			EnergyLevel:     max(0.4, 0.7-i*0.2),
			SuggestedEmojis: []string{"💙", "🫂", "✨"},
		}
	},
	EmotionFear: func(i float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "reassuring_supportive",
			EmojiFrequency:  min(0.7, 0.5+i*0.2),
			EmpathyLevel:    min(1.0, 0.8+i*0.2),
			EnergyLevel:     max(0.5, 0.7-i*0.2),
			SuggestedEmojis: []string{"🫂", "💙", "✨", "😊"},
		}
	},
	EmotionLove: func(i float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "warm_affectionate",
			EmojiFrequency:  min(0.9, 0.7+i*0.2),
			EmpathyLevel:    0.8,
			EnergyLevel:     min(0.9, 0.7+i*0.2),
			SuggestedEmojis: []string{"💛", "✨", "💕"},
		}
	},
	EmotionTired: func(i float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "gentle_caring",
			EmojiFrequency:  min(0.6, 0.4+i*0.2),
			EmpathyLevel:    0.8,
			EnergyLevel:     max(0.3, 0.5-i*0.2),
			SuggestedEmojis: []string{"😊", "💙", "✨", "🫂"},
		}
	},
	EmotionConfused: func(i float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "patient_explanatory",
			EmojiFrequency:  min(0.7, 0.5+i*0.2),
			EmpathyLevel:    0.7,
			EnergyLevel:     0.6,
			SuggestedEmojis: []string{"😊", "✨", "💡"},
		}
	},
	EmotionGrateful: func(i float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "warm_humble",
			EmojiFrequency:  min(0.8, 0.6+i*0.2),
			EmpathyLevel:    0.6,
			EnergyLevel:     min(0.8, 0.6+i*0.2),
			SuggestedEmojis: []string{"😊", "💛", "✨", "🫂"},
		}
	},
	EmotionNeutral: func(float64) ResponseStyle {
		return ResponseStyle{
			Tone:            "balanced_friendly",
			EmojiFrequency:  0.5,
			EmpathyLevel:    0.6,
			EnergyLevel:     0.6,
			SuggestedEmojis: []string{"😊", "✨"},
		}
	},
}

// StyleFor maps an analysis to its response style. Unknown emotions use the neutral template.
func StyleFor(analysis Analysis) ResponseStyle {
	tmpl, ok := styles[analysis.DominantEmotion]
	if !ok {
		tmpl = styles[EmotionNeutral]
	}
	return tmpl(analysis.Intensity)
}

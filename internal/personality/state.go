// Package personality tracks the per-conversation personality drift of the companion.
package personality

import (
	"maps"

	"github.com/Little-pure-light/language-Model/internal/emotion"
)

const (
	TraitCuriosity      = "curiosity"
	TraitEmpathy        = "empathy"
	TraitHumor          = "humor"
	TraitTechnicalDepth = "technical_depth"
)

const (
	DomainTechnical = "technical"
	DomainEmotional = "emotional"
	DomainLife      = "life"
	DomainLearning  = "learning"
)

const (
	historyCap    = 50
	messagePrefix = 100
	defaultTrait  = 0.5
)

// EmotionalProfile counts interactions per sentiment.
type EmotionalProfile struct {
	Positive int `json:"positive_interactions"`
	Negative int `json:"negative_interactions"`
	Neutral  int `json:"neutral_interactions"`
}

// Total is the number of counted interactions.
func (p EmotionalProfile) Total() int {
	return p.Positive + p.Negative + p.Neutral
}

// Snapshot is one entry of the emotion history.
type Snapshot struct {
	Timestamp       string          `json:"timestamp"`
	DominantEmotion emotion.Emotion `json:"dominant_emotion"`
	Intensity       float64         `json:"intensity"`
	Confidence      float64         `json:"confidence"`
	UserMessage     string          `json:"user_message"`
}

// State is the serialized personality of one conversation.
type State struct {
	Traits         map[string]float64 `json:"traits"`
	Domains        map[string]int     `json:"domains"`
	Emotions       EmotionalProfile   `json:"emotions"`
	EmotionHistory []Snapshot         `json:"emotion_history"`
}

// DefaultState returns the state of a conversation with no history.
func DefaultState() State {
	return State{
		Traits: map[string]float64{
			TraitCuriosity:      defaultTrait,
			TraitEmpathy:        defaultTrait,
			TraitHumor:          defaultTrait,
			TraitTechnicalDepth: defaultTrait,
		},
		Domains:        map[string]int{},
		EmotionHistory: []Snapshot{},
	}
}

// normalize fills gaps left by a partial or older snapshot.
func (s *State) normalize() {
	defaults := DefaultState()
	if s.Traits == nil {
		s.Traits = defaults.Traits
	}
	for name, value := range defaults.Traits {
		if _, ok := s.Traits[name]; !ok {
			s.Traits[name] = value
		}
	}
	for name, value := range s.Traits {
		s.Traits[name] = emotion.Clamp01(value)
	}
	if s.Domains == nil {
		s.Domains = map[string]int{}
	}
	if s.EmotionHistory == nil {
		s.EmotionHistory = []Snapshot{}
	}
}

// clone returns a deep copy.
func (s State) clone() State {
	out := s
	out.Traits = maps.Clone(s.Traits)
	out.Domains = maps.Clone(s.Domains)
	out.EmotionHistory = make([]Snapshot, len(s.EmotionHistory))
	copy(out.EmotionHistory, s.EmotionHistory)
	return out
}

// trimmed returns the state with at most the last 50 history entries.
func (s State) trimmed() State {
	out := s.clone()
	if n := len(out.EmotionHistory); n > historyCap {
		out.EmotionHistory = out.EmotionHistory[n-historyCap:]
	}
	return out
}

// traitDeltas is the per-unit-intensity trait drift per dominant emotion.
var traitDeltas = map[emotion.Emotion][]struct {
	trait string
	delta float64
}{
	emotion.EmotionJoy:      {{TraitEmpathy, 0.01}, {TraitHumor, 0.02}},
	emotion.EmotionSadness:  {{TraitEmpathy, 0.03}, {TraitTechnicalDepth, -0.01}},
	emotion.EmotionAnger:    {{TraitEmpathy, 0.02}, {TraitHumor, -0.01}},
	emotion.EmotionFear:     {{TraitEmpathy, 0.03}, {TraitCuriosity, -0.01}},
	emotion.EmotionConfused: {{TraitTechnicalDepth, 0.02}, {TraitCuriosity, 0.01}},
}

// domainKeywords maps interest domains to trigger words, matched case-sensitively.
var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{DomainTechnical, []string{"程式", "代碼", "bug", "API", "資料庫"}},
	{DomainEmotional, []string{"感覺", "心情", "情緒", "開心", "難過"}},
	{DomainLife, []string{"吃", "睡", "玩", "工作", "休息"}},
	{DomainLearning, []string{"學", "教", "知道", "了解", "記住"}},
}

// Package prompt assembles the message list sent to the language model.
package prompt

import (
	"bytes"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Little-pure-light/language-Model/internal/emotion"
)

// PersonaRenderer renders the persona block for a response style.
type PersonaRenderer interface {
	Name() string
	Render(style emotion.ResponseStyle) (string, error)
}

// Composer builds the system and user messages for one turn.
type Composer struct {
	analyzer *emotion.Analyzer
	persona  PersonaRenderer
}

// NewComposer creates a Composer. A nil analyzer uses the built-in dictionary.
func NewComposer(analyzer *emotion.Analyzer, persona PersonaRenderer) *Composer {
	if analyzer == nil {
		analyzer = emotion.NewAnalyzer()
	}
	return &Composer{analyzer: analyzer, persona: persona}
}

// Compose analyzes userMessage and returns the system message followed by the
// user message, along with the analysis for the caller to persist.
func (c *Composer) Compose(userMessage, recalled, history string) ([]*genai.Content, emotion.Analysis, error) {
	analysis := c.analyzer.Analyze(userMessage)
	style := emotion.StyleFor(analysis)

	if c.persona == nil {
		return nil, analysis, fmt.Errorf("persona renderer is required")
	}
	personaBlock, err := c.persona.Render(style)
	if err != nil {
		return nil, analysis, fmt.Errorf("failed to render persona: %w", err)
	}

	data := struct {
		Persona    string
		Memory     string
		History    string
		Emotion    emotion.Emotion
		Intensity  float64
		Confidence float64
		Tone       string
		Empathy    float64
		Energy     float64
		Name       string
	}{
		Persona:    personaBlock,
		Memory:     orPlaceholder(recalled, noMemoryPlaceholder),
		History:    orPlaceholder(history, noHistoryPlaceholder),
		Emotion:    analysis.DominantEmotion,
		Intensity:  analysis.Intensity,
		Confidence: analysis.Confidence,
		Tone:       style.Tone,
		Empathy:    style.EmpathyLevel,
		Energy:     style.EnergyLevel,
		Name:       c.persona.Name(),
	}

	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return nil, analysis, fmt.Errorf("failed to build prompt: %w", err)
	}

	systemContent := genai.NewContentFromText(buf.String(), "system")
	userContent := genai.NewContentFromText(userMessage, "user")
	return []*genai.Content{systemContent, userContent}, analysis, nil
}

func orPlaceholder(text, placeholder string) string {
	if strings.TrimSpace(text) == "" {
		return placeholder
	}
	return text
}

package persona

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Little-pure-light/language-Model/internal/emotion"
)

func loadSample(t *testing.T) *Profile {
	t.Helper()
	p, err := Parse([]byte(sampleProfile))
	require.NoError(t, err)
	return p
}

func lineValue(t *testing.T, text, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	t.Fatalf("line %q not found", prefix)
	return ""
}

func TestRenderIncludesStyleAndTraits(t *testing.T) {
	r := NewRenderer(loadSample(t), rand.New(rand.NewPCG(1, 2)))
	style := emotion.StyleFor(emotion.Analysis{DominantEmotion: emotion.EmotionJoy, Intensity: 0.5})

	out, err := r.Render(style)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "你是小宸光，"+defaultTagline+"。"))
	assert.Contains(t, out, "- 語調風格: cheerful_enthusiastic")
	assert.Contains(t, out, "- 建議表情符號: 😊 😄 🎉")
	assert.Contains(t, out, "溫柔體貼(90.0%)")
	// no emotional tendency clears the threshold
	assert.NotContains(t, out, "同理心(")
	assert.Contains(t, out, "- MBTI: INFJ")
	assert.Contains(t, out, "- 當用戶難過時：提供溫暖安慰，降低能量但提高同理心")
}

func TestRenderSamplesFromProfile(t *testing.T) {
	p := loadSample(t)
	r := NewRenderer(p, rand.New(rand.NewPCG(7, 7)))

	for i := 0; i < 10; i++ {
		out, err := r.Render(emotion.StyleFor(emotion.NeutralAnalysis()))
		require.NoError(t, err)

		phrases := strings.Split(lineValue(t, out, "- 常用口頭禪: "), ", ")
		require.Len(t, phrases, 2)
		assert.NotEqual(t, phrases[0], phrases[1])
		for _, phrase := range phrases {
			assert.Contains(t, p.LanguagePatterns.CatchPhrases, phrase)
		}
		assert.Contains(t, p.LanguagePatterns.SpecialAddressing.ToUser, lineValue(t, out, "- 稱呼對方: "))
		assert.Contains(t, p.LanguagePatterns.SpecialAddressing.SelfReference, lineValue(t, out, "- 自稱方式: "))
	}
}

func TestRenderIsReproducibleWithSameSeed(t *testing.T) {
	p := loadSample(t)
	a := NewRenderer(p, rand.New(rand.NewPCG(42, 0)))
	b := NewRenderer(p, rand.New(rand.NewPCG(42, 0)))
	style := emotion.StyleFor(emotion.NeutralAnalysis())

	outA, err := a.Render(style)
	require.NoError(t, err)
	outB, err := b.Render(style)
	require.NoError(t, err)
	assert.Equal(t, outA, outB)
}

func TestRenderDefaultsForEmptyStyle(t *testing.T) {
	r := NewRenderer(loadSample(t), nil)
	out, err := r.Render(emotion.ResponseStyle{})
	require.NoError(t, err)
	assert.Contains(t, out, "- 語調風格: balanced_friendly")
	assert.Contains(t, out, "- 建議表情符號: 😊 ✨ 💛")
}

func TestSelectTraits(t *testing.T) {
	got := selectTraits(
		map[string]float64{"b": 0.8, "a": 0.8, "c": 0.1},
		map[string]float64{"x": 0.7},
		nil,
	)
	assert.Equal(t, []string{"a(80.0%)"}, got)
}

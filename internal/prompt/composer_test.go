package prompt

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Little-pure-light/language-Model/internal/emotion"
	"github.com/Little-pure-light/language-Model/internal/persona"
	"github.com/Little-pure-light/language-Model/internal/utils"
)

type stubPersona struct {
	name  string
	err   error
	style emotion.ResponseStyle
}

func (s *stubPersona) Name() string { return s.name }

func (s *stubPersona) Render(style emotion.ResponseStyle) (string, error) {
	s.style = style
	if s.err != nil {
		return "", s.err
	}
	return "PERSONA:" + style.Tone, nil
}

func TestComposeJoyWithoutContext(t *testing.T) {
	profile, err := persona.Load("../../profile/user_profile.json")
	require.NoError(t, err)
	c := NewComposer(nil, persona.NewRenderer(profile, rand.New(rand.NewPCG(7, 7))))

	contents, analysis, err := c.Compose("我今天好開心！", "", "")
	require.NoError(t, err)
	require.Len(t, contents, 2)

	assert.Equal(t, emotion.EmotionJoy, analysis.DominantEmotion)
	assert.Equal(t, "cheerful_enthusiastic", emotion.StyleFor(analysis).Tone)

	assert.Equal(t, "system", contents[0].Role)
	system := utils.ExtractContentText(contents[0])
	assert.True(t, strings.HasPrefix(system, "你是小宸光，"))
	assert.Contains(t, system, "### 記憶與上下文\n（無相關記憶）")
	assert.Contains(t, system, "### 最近對話歷史\n（這是對話開始）")
	assert.Contains(t, system, "- 主要情緒: joy")
	assert.Contains(t, system, "- 回應語調: cheerful_enthusiastic")
	assert.True(t, strings.HasSuffix(system, "請根據以上所有資訊，以小宸光的身份回應用戶，展現出對應的情感理解與個性特質。"))

	assert.Equal(t, "user", contents[1].Role)
	assert.Equal(t, "我今天好開心！", utils.ExtractContentText(contents[1]))
}

func TestComposeSectionOrder(t *testing.T) {
	p := &stubPersona{name: "小宸光"}
	c := NewComposer(emotion.NewAnalyzer(), p)

	contents, _, err := c.Compose("我好難過", "【喚醒記憶】\n- 你曾對我說：「晚安」", "用戶: 嗨\n小宸光: 你好")
	require.NoError(t, err)
	system := utils.ExtractContentText(contents[0])

	personaAt := strings.Index(system, "PERSONA:gentle_comforting")
	memory := strings.Index(system, "【喚醒記憶】")
	history := strings.Index(system, "用戶: 嗨")
	analysis := strings.Index(system, "### 當前情感分析")
	require.True(t, personaAt >= 0 && memory >= 0 && history >= 0 && analysis >= 0)
	assert.Less(t, personaAt, memory)
	assert.Less(t, memory, history)
	assert.Less(t, history, analysis)

	assert.NotContains(t, system, noMemoryPlaceholder)
	assert.NotContains(t, system, noHistoryPlaceholder)
	assert.Equal(t, "gentle_comforting", p.style.Tone)
}

func TestComposeNeutralAnalysisLine(t *testing.T) {
	c := NewComposer(nil, &stubPersona{name: "小宸光"})

	contents, analysis, err := c.Compose("嗯", "", "")
	require.NoError(t, err)
	assert.Equal(t, emotion.EmotionNeutral, analysis.DominantEmotion)

	system := utils.ExtractContentText(contents[0])
	assert.Contains(t, system, "- 強度: 0.50")
	assert.Contains(t, system, "- 信心度: 0.00")
	assert.Contains(t, system, "- 回應語調: balanced_friendly")
}

func TestComposeRenderError(t *testing.T) {
	c := NewComposer(nil, &stubPersona{err: errors.New("boom")})

	_, analysis, err := c.Compose("謝謝你", "", "")
	require.Error(t, err)
	assert.Equal(t, emotion.EmotionGrateful, analysis.DominantEmotion)
}

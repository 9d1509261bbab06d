package persona

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Little-pure-light/language-Model/internal/emotion"
)

const traitThreshold = 0.7

const personaTemplateText = `你是{{.Name}}，{{.Tagline}}。

### 核心身份
{{.Backstory}}
{{- if .Identity}}
{{range .Identity}}
- {{.}}
{{- end}}
{{- end}}

### 當前人格特質
{{.Traits}}

### 當前情感回應風格
- 語調風格: {{.Tone}}
- 建議表情符號: {{.Emojis}}

### 語言風格
- 常用口頭禪: {{.Phrases}}
- 稱呼對方: {{.ToUser}}
- 自稱方式: {{.SelfReference}}

### 互動原則
1. 根據用戶情感狀態調整回應風格
2. 用溫柔體貼的語氣回應
3. 適時展現俏皮可愛的一面
4. 善解人意，主動關心對方
5. 保持樂觀積極的態度

### 情感回應指導
{{- range .Guidance}}
- {{.}}
{{- end}}`

var personaTemplate = template.Must(template.New("persona").Parse(personaTemplateText))

var (
	defaultTone   = "balanced_friendly"
	defaultEmojis = []string{"😊", "✨", "💛"}
)

// Renderer turns a Profile into the persona block of the system prompt.
type Renderer struct {
	profile *Profile

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRenderer returns a Renderer. A nil rng is replaced by a time-seeded one.
func NewRenderer(profile *Profile, rng *rand.Rand) *Renderer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Renderer{profile: profile, rng: rng}
}

// Profile returns the rendered profile.
func (r *Renderer) Profile() *Profile {
	return r.profile
}

// Name returns the persona name.
func (r *Renderer) Name() string {
	if r == nil || r.profile == nil {
		return ""
	}
	return r.profile.Name
}

// Render builds the persona block for the given response style.
func (r *Renderer) Render(style emotion.ResponseStyle) (string, error) {
	p := r.profile
	if p == nil {
		return "", fmt.Errorf("persona profile is nil")
	}

	tone := defaultTone
	emojis := defaultEmojis
	if style.Tone != "" {
		tone = style.Tone
	}
	if len(style.SuggestedEmojis) > 0 {
		emojis = style.SuggestedEmojis
	}
	if len(emojis) > 3 {
		emojis = emojis[:3]
	}

	r.mu.Lock()
	phrases := r.sample(p.LanguagePatterns.CatchPhrases, 2)
	toUser := r.pick(p.LanguagePatterns.SpecialAddressing.ToUser)
	self := r.pick(p.LanguagePatterns.SpecialAddressing.SelfReference)
	r.mu.Unlock()

	data := struct {
		Name          string
		Tagline       string
		Backstory     string
		Identity      []string
		Traits        string
		Tone          string
		Emojis        string
		Phrases       string
		ToUser        string
		SelfReference string
		Guidance      []string
	}{
		Name:          p.Name,
		Tagline:       p.Tagline,
		Backstory:     p.Backstory,
		Identity:      identityLines(p),
		Traits:        strings.Join(selectTraits(p.CoreTraits, p.EmotionalTendencies), ", "),
		Tone:          tone,
		Emojis:        strings.Join(emojis, " "),
		Phrases:       strings.Join(phrases, ", "),
		ToUser:        toUser,
		SelfReference: self,
		Guidance:      emotion.GuidanceLines(),
	}

	var buf bytes.Buffer
	if err := personaTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render persona: %w", err)
	}
	return buf.String(), nil
}

// sample picks up to n distinct items. Caller holds r.mu.
func (r *Renderer) sample(items []string, n int) []string {
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for _, idx := range r.rng.Perm(len(items))[:n] {
		out = append(out, items[idx])
	}
	return out
}

// pick returns one random item, or "" for an empty list. Caller holds r.mu.
func (r *Renderer) pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[r.rng.IntN(len(items))]
}

// selectTraits keeps the top trait of each category when it exceeds the threshold.
func selectTraits(categories ...map[string]float64) []string {
	var out []string
	for _, traits := range categories {
		if len(traits) == 0 {
			continue
		}
		names := make([]string, 0, len(traits))
		for name := range traits {
			names = append(names, name)
		}
		sort.Strings(names)

		best := names[0]
		for _, name := range names[1:] {
			if traits[name] > traits[best] {
				best = name
			}
		}
		if traits[best] > traitThreshold {
			out = append(out, fmt.Sprintf("%s(%.1f%%)", best, traits[best]*100))
		}
	}
	return out
}

func identityLines(p *Profile) []string {
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+value)
		}
	}
	if p.Age > 0 {
		add("年齡", fmt.Sprintf("%d", p.Age))
	}
	add("生日", p.Birthday)
	add("星座", p.Constellation)
	add("MBTI", p.MBTI)
	add("家鄉", p.Hometown)
	add("職業", p.Occupation)
	return lines
}

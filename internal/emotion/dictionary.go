package emotion

import "regexp"

// intensifier scales an emotion score when its trigger appears in the text.
type intensifier struct {
	trigger string
	factor  float64
}

// entry is the lexicon for one emotion. Intensifiers are listed in priority order.
type entry struct {
	emotion      Emotion
	keywords     []string
	patterns     []*regexp.Regexp
	intensifiers []intensifier
}

var defaultIntensifiers = []intensifier{
	{trigger: "超級", factor: 1.5},
	{trigger: "非常", factor: 1.3},
	{trigger: "真的", factor: 1.2},
	{trigger: "好", factor: 1.1},
}

// dictionary order is significant: it breaks ties for the dominant emotion.
var dictionary = []entry{
	{
		emotion:      EmotionJoy,
		keywords:     []string{"開心", "快樂", "高興", "興奮", "爽", "棒", "讚", "好", "耶", "哈哈", "嘻嘻"},
		patterns:     compile(`太好了`, `真棒`, `好開心`, `超級.*好`, `非常.*興奮`),
		intensifiers: defaultIntensifiers,
	},
	{
		emotion:      EmotionSadness,
		keywords:     []string{"難過", "傷心", "哭", "沮喪", "失望", "憂鬱", "痛苦", "嗚嗚"},
		patterns:     compile(`好難過`, `想哭`, `心情.*低落`, `很失望`, `受傷`),
		intensifiers: defaultIntensifiers,
	},
	{
		emotion:  EmotionAnger,
		keywords: []string{"生氣", "憤怒", "氣死", "討厭", "煩", "爛", "可惡"},
		patterns: compile(`氣死.*了`, `超級.*煩`, `真的.*討厭`, `受不了`),
		intensifiers: []intensifier{
			{trigger: "超級", factor: 1.8},
			{trigger: "非常", factor: 1.5},
			{trigger: "真的", factor: 1.3},
			{trigger: "好", factor: 1.2},
		},
	},
	{
		emotion:  EmotionFear,
		keywords: []string{"害怕", "恐懼", "緊張", "擔心", "焦慮", "怕", "驚", "慌"},
		patterns: compile(`好怕`, `很緊張`, `擔心.*得`, `焦慮.*不安`),
		intensifiers: []intensifier{
			{trigger: "超級", factor: 1.6},
			{trigger: "非常", factor: 1.4},
			{trigger: "真的", factor: 1.2},
			{trigger: "好", factor: 1.1},
		},
	},
	{
		emotion:  EmotionLove,
		keywords: []string{"愛", "喜歡", "心動", "溫暖", "甜蜜", "幸福"},
		patterns: compile(`好愛`, `很喜歡`, `心動.*了`, `好甜蜜`, `感覺.*溫暖`),
		intensifiers: []intensifier{
			{trigger: "超級", factor: 1.4},
			{trigger: "非常", factor: 1.3},
			{trigger: "真的", factor: 1.2},
			{trigger: "好", factor: 1.1},
		},
	},
	{
		emotion:      EmotionTired,
		keywords:     []string{"累", "疲憊", "睏", "想睡", "沒力", "筋疲力盡"},
		patterns:     compile(`好累`, `累死.*了`, `沒.*力氣`, `想睡覺`),
		intensifiers: defaultIntensifiers,
	},
	{
		emotion:  EmotionConfused,
		keywords: []string{"困惑", "不懂", "搞不懂", "迷惑", "？", "??"},
		patterns: compile(`搞不懂`, `不明白`, `很困惑`, `看不懂`),
		intensifiers: []intensifier{
			{trigger: "完全", factor: 1.5},
			{trigger: "真的", factor: 1.3},
			{trigger: "好", factor: 1.1},
		},
	},
	{
		emotion:  EmotionGrateful,
		keywords: []string{"謝謝", "感謝", "感恩", "謝", "3Q", "thx"},
		patterns: compile(`謝謝.*你`, `真的.*感謝`, `好感謝`, `太感謝`),
		intensifiers: []intensifier{
			{trigger: "超級", factor: 1.4},
			{trigger: "非常", factor: 1.3},
			{trigger: "真的", factor: 1.2},
			{trigger: "好", factor: 1.1},
		},
	},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

// Keywords returns every distinct keyword in the dictionary, in declaration order.
func Keywords() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range dictionary {
		for _, kw := range e.keywords {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// Emotions returns the dictionary emotions in declaration order.
func Emotions() []Emotion {
	out := make([]Emotion, 0, len(dictionary))
	for _, e := range dictionary {
		out = append(out, e.emotion)
	}
	return out
}

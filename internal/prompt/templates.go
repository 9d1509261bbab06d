package prompt

import "text/template"

const (
	noMemoryPlaceholder  = "（無相關記憶）"
	noHistoryPlaceholder = "（這是對話開始）"
)

const systemTemplateText = `{{.Persona}}

### 記憶與上下文
{{.Memory}}

### 最近對話歷史
{{.History}}

### 當前情感分析
- 主要情緒: {{.Emotion}}
- 強度: {{printf "%.2f" .Intensity}}
- 信心度: {{printf "%.2f" .Confidence}}
- 回應語調: {{.Tone}}
- 同理心等級: {{printf "%.2f" .Empathy}}
- 能量等級: {{printf "%.2f" .Energy}}

請根據以上所有資訊，以{{.Name}}的身份回應用戶，展現出對應的情感理解與個性特質。`

var systemTemplate = template.Must(template.New("system").Parse(systemTemplateText))

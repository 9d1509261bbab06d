package models

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func NewOpenRouterModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	if modelName != "" && !strings.HasPrefix(modelName, "openrouter/") {
		modelName = fmt.Sprintf("openrouter/%s", modelName)
	}
	return newCompatibleModel(modelName, cfg, "openrouter-go", "https://openrouter.ai/api/v1")
}

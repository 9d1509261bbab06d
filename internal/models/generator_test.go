package models

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

type fakeLLM struct {
	reply string
	err   error
	req   *model.LLMRequest
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	f.req = req
	return func(yield func(*model.LLMResponse, error) bool) {
		if f.err != nil {
			yield(nil, f.err)
			return
		}
		yield(&model.LLMResponse{
			Content:      genai.NewContentFromText(f.reply, "model"),
			TurnComplete: true,
		}, nil)
	}
}

func TestCompleteMovesSystemIntoInstruction(t *testing.T) {
	llm := &fakeLLM{reply: "  嗨嗨  "}
	gen := NewGenerator(llm)

	out, err := gen.Complete(context.Background(), []*genai.Content{
		genai.NewContentFromText("你是小宸光", "system"),
		genai.NewContentFromText("你好", "user"),
	}, CompletionOptions{MaxTokens: 256, Temperature: genai.Ptr(0.5)})
	require.NoError(t, err)
	assert.Equal(t, "嗨嗨", out)

	require.NotNil(t, llm.req)
	require.Len(t, llm.req.Contents, 1)
	assert.Equal(t, "user", llm.req.Contents[0].Role)
	require.NotNil(t, llm.req.Config.SystemInstruction)
	assert.Equal(t, "你是小宸光", llm.req.Config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, int32(256), llm.req.Config.MaxOutputTokens)
	require.NotNil(t, llm.req.Config.Temperature)
	assert.Equal(t, float32(0.5), *llm.req.Config.Temperature)
}

func TestCompleteTemperature(t *testing.T) {
	llm := &fakeLLM{reply: "好"}
	gen := NewGenerator(llm)
	contents := []*genai.Content{genai.NewContentFromText("hi", "user")}

	_, err := gen.Complete(context.Background(), contents, CompletionOptions{Temperature: genai.Ptr(0.0)})
	require.NoError(t, err)
	require.NotNil(t, llm.req.Config.Temperature)
	assert.Zero(t, *llm.req.Config.Temperature)

	_, err = gen.Complete(context.Background(), contents, CompletionOptions{})
	require.NoError(t, err)
	assert.Nil(t, llm.req.Config.Temperature)
}

func TestCompleteEmptyReply(t *testing.T) {
	gen := NewGenerator(&fakeLLM{reply: "   "})
	_, err := gen.Complete(context.Background(), []*genai.Content{
		genai.NewContentFromText("hi", "user"),
	}, CompletionOptions{})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestCompletePropagatesModelError(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := NewGenerator(&fakeLLM{err: boom})
	_, err := gen.Complete(context.Background(), []*genai.Content{
		genai.NewContentFromText("hi", "user"),
	}, CompletionOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestCompleteWithoutModel(t *testing.T) {
	var gen *Generator
	_, err := gen.Complete(context.Background(), nil, CompletionOptions{})
	assert.Error(t, err)
}

func TestNewLLMRejectsUnknownProvider(t *testing.T) {
	_, err := NewLLM(context.Background(), "claude-local", "m", "key")
	assert.Error(t, err)
}

func TestNewLLMRequiresAPIKey(t *testing.T) {
	for _, provider := range []string{"openai", "grok", "openrouter", "gemini"} {
		_, err := NewLLM(context.Background(), provider, "m", "")
		assert.Error(t, err, provider)
	}
}

func TestNewLLMOpenAICompatible(t *testing.T) {
	llm, err := NewLLM(context.Background(), "openai", "", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, openAIDefaultModel, llm.Name())

	llm, err = NewLLM(context.Background(), "openrouter", "meta/llama", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "openrouter/meta/llama", llm.Name())
}

func TestBuildOpenAIParams(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText("你好", "user"),
			genai.NewContentFromText("嗨", "model"),
			genai.NewContentFromText("在嗎", "user"),
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("persona", "system"),
			MaxOutputTokens:   128,
			Temperature:       genai.Ptr(float32(0.5)),
		},
	}

	params := buildOpenAIParams(req, "gpt-4o-mini")

	assert.Equal(t, "gpt-4o-mini", params.Model)
	require.Len(t, params.Messages, 4)
	assert.NotNil(t, params.Messages[0].OfSystem)
	assert.NotNil(t, params.Messages[1].OfUser)
	assert.NotNil(t, params.Messages[2].OfAssistant)
	assert.NotNil(t, params.Messages[3].OfUser)
	assert.Equal(t, openai.Int(128), params.MaxTokens)
	assert.Equal(t, openai.Float(0.5), params.Temperature)
}

func TestMaybeAppendUserContent(t *testing.T) {
	m := &openaiModel{name: "x"}
	req := &model.LLMRequest{Contents: []*genai.Content{genai.NewContentFromText("hi", "model")}}
	m.maybeAppendUserContent(req)
	require.Len(t, req.Contents, 2)
	assert.Equal(t, "user", req.Contents[1].Role)
}

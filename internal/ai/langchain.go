package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"syllabus_calendar/internal/config"
)

// LangChainClient adapts any langchaingo model to Client.
type LangChainClient struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

func NewLangChainClient(model llms.Model, temperature float64, maxTokens int) *LangChainClient {
	return &LangChainClient{model: model, temperature: temperature, maxTokens: maxTokens}
}

func NewOpenAI(cfg config.LLMConfig) (*LangChainClient, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ai: create openai model: %w", err)
	}
	return NewLangChainClient(model, cfg.Temperature, cfg.MaxOutputTokens), nil
}

func NewOllama(cfg config.LLMConfig) (*LangChainClient, error) {
	opts := []ollama.Option{
		ollama.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	model, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ai: create ollama model: %w", err)
	}
	return NewLangChainClient(model, cfg.Temperature, cfg.MaxOutputTokens), nil
}

func (lc *LangChainClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := lc.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(lc.temperature),
		llms.WithMaxTokens(lc.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("langchain generate failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Content, nil
}

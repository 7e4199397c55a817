package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"syllabus_calendar/internal/config"
)

// NewClient picks the backend named by cfg.Provider. It returns ErrDisabled
// when extraction should run without an LLM.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, ErrDisabled
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini api key is empty", ErrDisabled)
		}
		return NewGeminiClient(cfg), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: openai api key is empty", ErrDisabled)
		}
		client, err := NewOpenAI(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "ollama":
		client, err := NewOllama(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("ai: unsupported provider %q", cfg.Provider)
	}
}

// WithTimeout bounds every Generate call of next by d.
func WithTimeout(next Client, d time.Duration) Client {
	if d <= 0 {
		return next
	}
	return timeoutClient{next: next, timeout: d}
}

type timeoutClient struct {
	next    Client
	timeout time.Duration
}

func (tc timeoutClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, tc.timeout)
	defer cancel()
	return tc.next.Generate(ctx, prompt)
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"syllabus_calendar/internal/config"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Client sends a single prompt to a generative-text backend and returns the reply text.
// Implementations must be safe for concurrent use.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var ErrDisabled = errors.New("ai: extraction backend disabled")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai: backend returned http %d: %s", e.Code, e.Body)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type GeminiRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GeminiClient talks to the Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	http        *http.Client
}

func NewGeminiClient(cfg config.LLMConfig) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     strings.TrimRight(baseURL, "/"),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		http:        &http.Client{Timeout: timeout},
	}
}

func (gc *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := GeminiRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     gc.temperature,
			MaxOutputTokens: gc.maxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini marshal failed: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", gc.baseURL, url.PathEscape(gc.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("gemini request create failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", gc.apiKey)

	resp, err := gc.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var genResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("gemini decode failed: %w", err)
	}

	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var text strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

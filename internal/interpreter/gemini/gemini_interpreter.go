package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bankmetrics/internal/config"
	"bankmetrics/internal/interpreter"
	"bankmetrics/internal/port"
	"bankmetrics/internal/provider"
)

const (
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	defaultMaxTokens = 4000
)

func init() {
	interpreter.RegisterProvider("gemini", func(cfg *config.InterpreterProviderConfig) (port.Interpreter, error) {
		return NewInterpreter(cfg), nil
	})
}

// Interpreter implements port.Interpreter using Google's Gemini API.
type Interpreter struct {
	apiKey      string
	model       string
	endpoint    string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewInterpreter creates a Gemini-based interpreter.
func NewInterpreter(cfg *config.InterpreterProviderConfig) *Interpreter {
	return newInterpreter(cfg, cfg.Endpoint)
}

// NewInterpreterWithEndpoint creates an interpreter pointing at a custom API endpoint (for testing).
func NewInterpreterWithEndpoint(cfg *config.InterpreterProviderConfig, endpoint string) *Interpreter {
	return newInterpreter(cfg, endpoint)
}

func newInterpreter(cfg *config.InterpreterProviderConfig, endpoint string) *Interpreter {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Interpreter{
		apiKey:      cfg.APIKey,
		model:       model,
		endpoint:    endpoint,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

func (p *Interpreter) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": input.SystemPrompt},
			},
		},
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": input.UserPrompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     p.temperature,
			"maxOutputTokens": p.maxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, provider.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, provider.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.CompletionOutput, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}

	if resp.Candidates[0].FinishReason == "MAX_TOKENS" {
		return nil, fmt.Errorf("output truncated (finishReason: MAX_TOKENS): response exceeded output token limit")
	}

	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API: no parts")
	}

	return &port.CompletionOutput{
		Text:      resp.Candidates[0].Content.Parts[0].Text,
		ModelUsed: model,
	}, nil
}

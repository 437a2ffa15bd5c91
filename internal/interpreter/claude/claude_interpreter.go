package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bankmetrics/internal/config"
	"bankmetrics/internal/interpreter"
	"bankmetrics/internal/port"
	"bankmetrics/internal/provider"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	defaultMaxTokens = 4000
)

func init() {
	interpreter.RegisterProvider("claude", func(cfg *config.InterpreterProviderConfig) (port.Interpreter, error) {
		return NewInterpreter(cfg), nil
	})
}

// Interpreter implements port.Interpreter using the Anthropic Messages API.
type Interpreter struct {
	apiKey      string
	model       string
	endpoint    string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewInterpreter creates a Claude-based interpreter from a provider config.
func NewInterpreter(cfg *config.InterpreterProviderConfig) *Interpreter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newInterpreter(cfg, endpoint)
}

// NewInterpreterWithEndpoint creates an interpreter pointing at a custom API endpoint (for testing).
func NewInterpreterWithEndpoint(cfg *config.InterpreterProviderConfig, endpoint string) *Interpreter {
	return newInterpreter(cfg, endpoint)
}

func newInterpreter(cfg *config.InterpreterProviderConfig, endpoint string) *Interpreter {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
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
		"model":       p.model,
		"max_tokens":  p.maxTokens,
		"temperature": p.temperature,
		"system":      input.SystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": input.UserPrompt,
			},
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
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, provider.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, provider.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.CompletionOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &port.CompletionOutput{
		Text:      text.String(),
		ModelUsed: model,
	}, nil
}

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bankmetrics/internal/config"
	"bankmetrics/internal/interpreter"
	"bankmetrics/internal/port"
	"bankmetrics/internal/provider"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"

	defaultAzureAPIVersion = "2024-10-21"
	defaultMaxTokens       = 4000
)

func init() {
	interpreter.RegisterProvider("openai", func(cfg *config.InterpreterProviderConfig) (port.Interpreter, error) {
		return NewInterpreter(cfg), nil
	})
	interpreter.RegisterProvider("azure-openai", func(cfg *config.InterpreterProviderConfig) (port.Interpreter, error) {
		return NewAzureInterpreter(cfg)
	})
}

// Interpreter implements port.Interpreter using the OpenAI Chat Completions API.
// The same wire format serves Azure OpenAI deployments.
type Interpreter struct {
	name        string
	apiKey      string
	model       string
	endpoint    string
	azure       bool
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewInterpreter creates an OpenAI-based interpreter from a provider config.
func NewInterpreter(cfg *config.InterpreterProviderConfig) *Interpreter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newInterpreter(cfg, endpoint, false)
}

// NewAzureInterpreter creates an interpreter for an Azure OpenAI deployment.
// cfg.Endpoint is the resource URL and cfg.DefaultModel the deployment name.
func NewAzureInterpreter(cfg *config.InterpreterProviderConfig) (*Interpreter, error) {
	endpoint, err := AzureDeploymentURL(cfg.Endpoint, cfg.DefaultModel, cfg.APIVersion)
	if err != nil {
		return nil, err
	}
	return newInterpreter(cfg, endpoint, true), nil
}

// NewInterpreterWithEndpoint creates an interpreter pointing at a custom API endpoint (for testing).
func NewInterpreterWithEndpoint(cfg *config.InterpreterProviderConfig, endpoint string) *Interpreter {
	return newInterpreter(cfg, endpoint, cfg.Provider == "azure-openai")
}

// AzureDeploymentURL builds the chat completions URL of an Azure OpenAI deployment.
func AzureDeploymentURL(resource, deployment, apiVersion string) (string, error) {
	if resource == "" || deployment == "" {
		return "", fmt.Errorf("azure-openai requires endpoint and deployment name")
	}
	if apiVersion == "" {
		apiVersion = defaultAzureAPIVersion
	}
	u, err := url.Parse(strings.TrimRight(resource, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing azure endpoint: %w", err)
	}
	u = u.JoinPath("openai", "deployments", deployment, "chat", "completions")
	q := u.Query()
	q.Set("api-version", apiVersion)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func newInterpreter(cfg *config.InterpreterProviderConfig, endpoint string, azure bool) *Interpreter {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	name := "openai"
	if azure {
		name = "azure-openai"
	}
	return &Interpreter{
		name:        name,
		apiKey:      cfg.APIKey,
		model:       model,
		endpoint:    endpoint,
		azure:       azure,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

func (p *Interpreter) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	reqBody := map[string]interface{}{
		"max_tokens":  p.maxTokens,
		"temperature": p.temperature,
		"messages": []map[string]interface{}{
			{"role": "system", "content": input.SystemPrompt},
			{"role": "user", "content": input.UserPrompt},
		},
	}
	// Azure selects the model through the deployment in the URL.
	if !p.azure {
		reqBody["model"] = p.model
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
	if p.azure {
		req.Header.Set("api-key", p.apiKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("%s API error (status %d): %s", p.name, resp.StatusCode, provider.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, provider.NewRateLimitError(p.name, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.CompletionOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	return &port.CompletionOutput{
		Text:      resp.Choices[0].Message.Content,
		ModelUsed: model,
	}, nil
}

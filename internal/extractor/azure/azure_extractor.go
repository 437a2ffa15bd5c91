package azure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bankmetrics/internal/config"
	"bankmetrics/internal/extractor"
	"bankmetrics/internal/port"
	"bankmetrics/internal/provider"
)

const (
	providerName = "azure-layout"

	defaultModel        = "prebuilt-layout"
	defaultAPIVersion   = "2024-11-30"
	defaultPollInterval = time.Second
)

func init() {
	extractor.RegisterProvider("azure", func(cfg *config.ExtractorConfig) (port.DocumentExtractor, error) {
		return NewExtractor(cfg)
	})
}

// Extractor implements port.DocumentExtractor using Azure Document Intelligence.
// Analysis is asynchronous: the document is submitted, then the operation is polled until it settles.
type Extractor struct {
	apiKey       string
	model        string
	analyzeURL   string
	pollInterval time.Duration
	timeout      time.Duration
	client       *http.Client
}

// NewExtractor creates an extractor for the Document Intelligence resource at cfg.Endpoint.
func NewExtractor(cfg *config.ExtractorConfig) (*Extractor, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure extractor requires an endpoint")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	u, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing azure endpoint: %w", err)
	}
	u = u.JoinPath("documentintelligence", "documentModels", model+":analyze")
	q := u.Query()
	q.Set("api-version", apiVersion)
	u.RawQuery = q.Encode()

	pollInterval := time.Duration(cfg.PollIntervalMs) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}

	return &Extractor{
		apiKey:       cfg.APIKey,
		model:        model,
		analyzeURL:   u.String(),
		pollInterval: pollInterval,
		timeout:      timeout,
		client:       &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	operationURL, err := e.submit(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := e.poll(ctx, operationURL)
	if err != nil {
		return nil, err
	}

	return toOutput(result, e.model), nil
}

func (e *Extractor) submit(ctx context.Context, input port.ExtractInput) (string, error) {
	reqBody := map[string]interface{}{
		"base64Source": base64.StdEncoding.EncodeToString(input.FileBytes),
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.analyzeURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling document intelligence API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", fmt.Errorf("document intelligence API returned no Operation-Location header")
	}
	return operationURL, nil
}

func (e *Extractor) poll(ctx context.Context, operationURL string) (*analyzeResult, error) {
	wait := e.pollInterval
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for layout analysis: %w", ctx.Err())
		case <-time.After(wait):
		}

		op, retryAfter, err := e.getOperation(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		wait = e.pollInterval
		if retryAfter > wait {
			wait = retryAfter
		}
		if op == nil {
			// throttled: keep polling the same operation
			continue
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, fmt.Errorf("layout analysis succeeded without a result")
			}
			return op.AnalyzeResult, nil
		case "failed", "canceled":
			if op.Error != nil {
				return nil, fmt.Errorf("layout analysis %s: %s: %s", op.Status, op.Error.Code, op.Error.Message)
			}
			return nil, fmt.Errorf("layout analysis %s", op.Status)
		}
	}
}

// getOperation fetches the operation status. A throttled poll yields a nil operation
// and the server's Retry-After.
func (e *Extractor) getOperation(ctx context.Context, operationURL string) (*operation, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("polling document intelligence API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	retryAfter := time.Duration(provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))) * time.Second
	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, retryAfter, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, statusError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}

	var op operation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, 0, fmt.Errorf("unmarshaling response: %w", err)
	}

	return &op, retryAfter, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	baseErr := fmt.Errorf("document intelligence API error (status %d): %s", resp.StatusCode, provider.Truncate(string(body), 500))
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return provider.NewRateLimitError(providerName, baseErr, retryAfter)
	}
	return baseErr
}

// operation models the analyze operation status response.
type operation struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type analyzeResult struct {
	ModelID string `json:"modelId"`
	Tables  []struct {
		RowCount    int `json:"rowCount"`
		ColumnCount int `json:"columnCount"`
		Cells       []struct {
			RowIndex    int    `json:"rowIndex"`
			ColumnIndex int    `json:"columnIndex"`
			Content     string `json:"content"`
		} `json:"cells"`
	} `json:"tables"`
}

func toOutput(r *analyzeResult, model string) *port.ExtractOutput {
	out := &port.ExtractOutput{ModelUsed: model}
	if r.ModelID != "" {
		out.ModelUsed = r.ModelID
	}
	for _, t := range r.Tables {
		table := port.Table{
			RowCount:    t.RowCount,
			ColumnCount: t.ColumnCount,
			Cells:       make([]port.TableCell, 0, len(t.Cells)),
		}
		for _, c := range t.Cells {
			table.Cells = append(table.Cells, port.TableCell{
				RowIndex:    c.RowIndex,
				ColumnIndex: c.ColumnIndex,
				Content:     c.Content,
			})
		}
		out.Tables = append(out.Tables, table)
	}
	return out
}

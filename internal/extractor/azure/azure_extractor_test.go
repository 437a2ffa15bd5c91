package azure_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/config"
	"bankmetrics/internal/extractor"
	"bankmetrics/internal/extractor/azure"
	"bankmetrics/internal/port"
	"bankmetrics/internal/provider"
)

const analyzePath = "/documentintelligence/documentModels/prebuilt-layout:analyze"

func newTestExtractor(t *testing.T, serverURL string) *azure.Extractor {
	t.Helper()
	e, err := azure.NewExtractor(&config.ExtractorConfig{
		Provider:       "azure",
		Endpoint:       serverURL,
		APIKey:         "test-di-key",
		PollIntervalMs: 1,
		TimeoutSecs:    5,
	})
	require.NoError(t, err)
	return e
}

func TestExtractor_Extract_PollsUntilSucceeded(t *testing.T) {
	var polls int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-di-key", r.Header.Get("Ocp-Apim-Subscription-Key"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == analyzePath:
			assert.Equal(t, "2024-11-30", r.URL.Query().Get("api-version"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.7")), body["base64Source"])

			w.Header().Set("Operation-Location", server.URL+"/operations/42")
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && r.URL.Path == "/operations/42":
			if atomic.AddInt32(&polls, 1) < 3 {
				_, _ = w.Write([]byte(`{"status":"running"}`))
				return
			}
			_, _ = w.Write([]byte(`{
				"status": "succeeded",
				"analyzeResult": {
					"modelId": "prebuilt-layout",
					"tables": [{
						"rowCount": 2, "columnCount": 2,
						"cells": [
							{"rowIndex": 0, "columnIndex": 0, "content": "Metric"},
							{"rowIndex": 0, "columnIndex": 1, "content": "Q1'25"},
							{"rowIndex": 1, "columnIndex": 0, "content": "CET1"},
							{"rowIndex": 1, "columnIndex": 1, "content": "13.2%"}
						]
					}]
				}
			}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	out, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF-1.7"),
		ContentType: "application/pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&polls))
	assert.Equal(t, "prebuilt-layout", out.ModelUsed)
	require.Len(t, out.Tables, 1)
	assert.Equal(t, 2, out.Tables[0].RowCount)
	assert.Len(t, out.Tables[0].Cells, 4)
	assert.Equal(t, "13.2%", out.Tables[0].Cells[3].Content)
}

func TestExtractor_Extract_ThrottledPollKeepsOperation(t *testing.T) {
	var submits, polls int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == analyzePath:
			atomic.AddInt32(&submits, 1)
			w.Header().Set("Operation-Location", server.URL+"/operations/7")
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && r.URL.Path == "/operations/7":
			if atomic.AddInt32(&polls, 1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"429"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"succeeded","analyzeResult":{"modelId":"prebuilt-layout","tables":[]}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	out, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{FileBytes: []byte("%PDF-1.7")})

	require.NoError(t, err)
	assert.Equal(t, "prebuilt-layout", out.ModelUsed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&submits))
	assert.Equal(t, int32(3), atomic.LoadInt32(&polls))
}

func TestExtractor_Extract_AnalysisFailed(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Operation-Location", server.URL+"/operations/1")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"status":"failed","error":{"code":"InvalidContent","message":"corrupt pdf"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{FileBytes: []byte("x")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidContent")
	assert.Contains(t, err.Error(), "corrupt pdf")
}

func TestExtractor_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{FileBytes: []byte("x")})

	var rlErr *provider.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 7*time.Second, rlErr.RetryAfter)
}

func TestExtractor_Extract_MissingOperationLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).Extract(context.Background(), port.ExtractInput{FileBytes: []byte("x")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operation-Location")
}

func TestExtractor_Extract_ContextCancelled(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Operation-Location", server.URL+"/operations/1")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"status":"running"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestExtractor(t, server.URL).Extract(ctx, port.ExtractInput{FileBytes: []byte("x")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewExtractor_RequiresEndpoint(t *testing.T) {
	_, err := azure.NewExtractor(&config.ExtractorConfig{Provider: "azure"})
	assert.Error(t, err)
}

func TestRegistry_Azure(t *testing.T) {
	e, err := extractor.NewExtractor(&config.ExtractorConfig{Provider: "azure", Endpoint: "https://example.cognitiveservices.azure.com"})
	require.NoError(t, err)
	assert.IsType(t, &azure.Extractor{}, e)

	_, err = extractor.NewExtractor(&config.ExtractorConfig{Provider: "textract"})
	assert.Error(t, err)
}

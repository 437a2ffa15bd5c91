package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/config"
	"bankmetrics/internal/interpreter/gemini"
	"bankmetrics/internal/port"
	"bankmetrics/internal/provider"
)

func newTestInterpreter(serverURL string) *gemini.Interpreter {
	return gemini.NewInterpreterWithEndpoint(&config.InterpreterProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-gemini-key",
		DefaultModel: "gemini-2.0-flash",
	}, serverURL)
}

func TestGeminiInterpreter_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		sys := reqBody["systemInstruction"].(map[string]interface{})
		parts := sys["parts"].([]interface{})
		assert.Equal(t, "system prompt", parts[0].(map[string]interface{})["text"])

		gen := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, float64(4000), gen["maxOutputTokens"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]interface{}{{"text": `{"metrics":{}}`}},
					},
					"finishReason": "STOP",
				},
			},
		})
	}))
	defer server.Close()

	out, err := newTestInterpreter(server.URL).Complete(context.Background(), port.CompletionInput{
		SystemPrompt: "system prompt",
		UserPrompt:   "user prompt",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"metrics":{}}`, out.Text)
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
}

func TestGeminiInterpreter_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestInterpreter(server.URL).Complete(context.Background(), port.CompletionInput{})

	var rlErr *provider.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "gemini", rlErr.Provider)
}

func TestGeminiInterpreter_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestInterpreter(server.URL).Complete(context.Background(), port.CompletionInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

package app_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/app"
	"bankmetrics/internal/config"
	"bankmetrics/internal/domain"
	"bankmetrics/internal/logging"
	"bankmetrics/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Workspace: config.WorkspaceConfig{
			RootDir:            "/ws",
			DocumentMarker:     "supplement",
			DocumentExtensions: []string{".pdf"},
			UserPromptFile:     "user_prompt.txt",
			SystemPromptDir:    "System_prompt",
			SystemPromptFile:   "system_prompt.txt",
			WindowSize:         5,
		},
		Batch:     config.BatchConfig{Concurrency: 1},
		Extractor: config.ExtractorConfig{Provider: "azure"},
		Notify:    config.NotifyConfig{Provider: "noop"},
	}
}

func seedWorkspace(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/ws", 0o755))
	files := map[string]string{
		"/ws/documents/Q12025/BankA/q1_supplement.pdf": "%PDF",
		"/ws/documents/Q12025/BankB/q1_supplement.pdf": "%PDF",
		"/ws/results/Q12025/BankA/BankA.json":          `{"metrics":{"Net Credit Loss Rate (%)":{"Q4'24":"1.10%","Q1'25":"1.22%"}}}`,
	}
	for path, body := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o644))
	}
	return fs
}

func TestNewWithFs_ConsolidateAndExport(t *testing.T) {
	ctx := context.Background()
	fs := seedWorkspace(t)

	a, err := app.NewWithFs(ctx, fs, testConfig(), logging.Discard(), app.Options{})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Auth)
	assert.Nil(t, a.DB)

	report, err := a.Analysis.Consolidate(ctx, domain.AnalyzeRequest{Banks: []string{"BankA", "BankB"}, Quarter: "Q1'25"})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusPartial, report.Status)
	assert.Equal(t, []string{"BankA"}, report.Consolidated.Banks())

	result, err := a.Results.Get(ctx, "Q12025")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Len())

	file, err := a.Results.Export(ctx, "Q12025", service.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "bank_metrics_Q12025.csv", file.Filename)
	assert.Contains(t, string(file.Body), "BankA")
}

func TestNewWithFs_AnalyzeRequiresExtraction(t *testing.T) {
	a, err := app.NewWithFs(context.Background(), seedWorkspace(t), testConfig(), logging.Discard(), app.Options{})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Analysis.Analyze(context.Background(), domain.AnalyzeRequest{Banks: []string{"BankA"}, Quarter: "Q12025"})
	assert.Error(t, err)
}

func TestNewWithFs_AuthEnabledBySecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{JWTSecret: "s3cret", Issuer: "bankmetrics"}

	a, err := app.NewWithFs(context.Background(), afero.NewMemMapFs(), cfg, logging.Discard(), app.Options{})
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Auth)
	token, err := a.Auth.IssueToken("ops", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestNewWithFs_Errors(t *testing.T) {
	t.Run("unknown notifier", func(t *testing.T) {
		cfg := testConfig()
		cfg.Notify.Provider = "pigeon"
		_, err := app.NewWithFs(context.Background(), afero.NewMemMapFs(), cfg, logging.Discard(), app.Options{})
		assert.ErrorContains(t, err, "unknown notify provider")
	})

	t.Run("unregistered extractor", func(t *testing.T) {
		cfg := testConfig()
		cfg.Extractor.Provider = "nope"
		_, err := app.NewWithFs(context.Background(), afero.NewMemMapFs(), cfg, logging.Discard(), app.Options{Extraction: true})
		assert.ErrorContains(t, err, "unknown extractor provider")
	})
}

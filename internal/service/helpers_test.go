package service_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/config"
	"bankmetrics/internal/logging"
	"bankmetrics/internal/workspace"
)

const testRoot = "/ws"

func testWorkspaceConfig() config.WorkspaceConfig {
	return config.WorkspaceConfig{
		RootDir:            testRoot,
		DocumentMarker:     "supplement",
		DocumentExtensions: []string{".pdf"},
		UserPromptFile:     "user_prompt.txt",
		SystemPromptDir:    "System_prompt",
		SystemPromptFile:   "system_prompt.txt",
		WindowSize:         5,
	}
}

func newTestWorkspace(t *testing.T) (afero.Fs, *workspace.Layout) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testRoot, 0o755))
	return fs, workspace.NewLayout(testWorkspaceConfig())
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

var discard = logging.Discard()

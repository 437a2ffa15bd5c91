package workspace_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/config"
	"bankmetrics/internal/domain"
	"bankmetrics/internal/workspace"
)

func testLayout() *workspace.Layout {
	return workspace.NewLayout(config.WorkspaceConfig{
		RootDir:          "/data",
		UserPromptFile:   "user_prompt.txt",
		SystemPromptDir:  "System_prompt",
		SystemPromptFile: "system_prompt.txt",
	})
}

func TestLayout_Paths(t *testing.T) {
	l := testLayout()
	q := domain.Quarter{Number: 1, Year: 2025}

	assert.Equal(t, filepath.FromSlash("/data/documents/Q12025/BankA"), l.DocumentDir(q, "BankA"))
	assert.Equal(t, filepath.FromSlash("/data/prompts/BankA/user_prompt.txt"), l.UserPromptPath("BankA"))
	assert.Equal(t, filepath.FromSlash("/data/prompts/System_prompt/system_prompt.txt"), l.SystemPromptPath())
	assert.Equal(t, filepath.FromSlash("/data/results/Q12025/BankA/BankA.json"), l.OutputPath(q, "BankA"))
	assert.Equal(t, filepath.FromSlash("/data/results/Q12025/consolidated_results.json"), l.ConsolidatedPath(q))
}

func TestLayout_OutputPathUniquePerBankAndQuarter(t *testing.T) {
	l := testLayout()
	q1 := domain.Quarter{Number: 1, Year: 2025}
	q4 := domain.Quarter{Number: 4, Year: 2024}

	assert.NotEqual(t, l.OutputPath(q1, "BankA"), l.OutputPath(q1, "BankB"))
	assert.NotEqual(t, l.OutputPath(q1, "BankA"), l.OutputPath(q4, "BankA"))
	assert.Equal(t, l.OutputPath(q1, "BankA"), l.OutputPath(q1, "BankA"))
}

func TestDirEnsurer_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := workspace.NewDirEnsurer(fs)

	path := "/data/results/Q12025/BankA/BankA.json"
	require.NoError(t, e.EnsureParent(path))
	require.NoError(t, e.EnsureParent(path))

	ok, err := afero.DirExists(fs, "/data/results/Q12025/BankA")
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriteFileAtomic_ReplacesContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/data/results/Q12025/consolidated_results.json"

	require.NoError(t, workspace.WriteFileAtomic(fs, path, []byte(`{"banks":{"A":{}}}`)))
	require.NoError(t, workspace.WriteFileAtomic(fs, path, []byte(`{"banks":{}}`)))

	got, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, `{"banks":{}}`, string(got))

	entries, err := afero.ReadDir(fs, "/data/results/Q12025")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "consolidated_results.json", entries[0].Name())
}

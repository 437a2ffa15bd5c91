package service_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/service"
)

var q12025 = domain.Quarter{Number: 1, Year: 2025}

func TestDocumentLocator_PicksLexicallyFirstMatch(t *testing.T) {
	fs, layout := newTestWorkspace(t)
	dir := layout.DocumentDir(q12025, "BankA")
	writeFile(t, fs, dir+"/b-Supplement.PDF", "b")
	writeFile(t, fs, dir+"/a-earnings-supplement.pdf", "a")
	writeFile(t, fs, dir+"/00-press-release.pdf", "x")
	writeFile(t, fs, dir+"/0-supplement.xlsx", "x")

	loc := service.NewDocumentLocator(fs, layout, testWorkspaceConfig())
	path, err := loc.Locate(q12025, "BankA")

	require.NoError(t, err)
	assert.Equal(t, dir+"/a-earnings-supplement.pdf", path)
}

func TestDocumentLocator_CaseInsensitive(t *testing.T) {
	fs, layout := newTestWorkspace(t)
	dir := layout.DocumentDir(q12025, "BankA")
	writeFile(t, fs, dir+"/Q1-SUPPLEMENT.PDF", "a")

	loc := service.NewDocumentLocator(fs, layout, testWorkspaceConfig())
	path, err := loc.Locate(q12025, "BankA")

	require.NoError(t, err)
	assert.Equal(t, dir+"/Q1-SUPPLEMENT.PDF", path)
}

func TestDocumentLocator_DirectoryMissing(t *testing.T) {
	fs, layout := newTestWorkspace(t)

	loc := service.NewDocumentLocator(fs, layout, testWorkspaceConfig())
	_, err := loc.Locate(q12025, "BankA")

	assert.ErrorIs(t, err, domain.ErrDocumentDirMissing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentLocator_NoMatchingDocument(t *testing.T) {
	fs, layout := newTestWorkspace(t)
	dir := layout.DocumentDir(q12025, "BankA")
	writeFile(t, fs, dir+"/press-release.pdf", "x")
	require.NoError(t, fs.MkdirAll(dir+"/supplement.pdf", 0o755))

	loc := service.NewDocumentLocator(fs, layout, testWorkspaceConfig())
	_, err := loc.Locate(q12025, "BankA")

	assert.ErrorIs(t, err, domain.ErrNoMatchingDocument)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentLocator_NotADirectoryIsHardError(t *testing.T) {
	fs, layout := newTestWorkspace(t)
	writeFile(t, fs, layout.DocumentDir(q12025, "BankA"), "oops")

	loc := service.NewDocumentLocator(fs, layout, testWorkspaceConfig())
	_, err := loc.Locate(q12025, "BankA")

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestDocumentLocator_PermissionErrorIsHardError(t *testing.T) {
	_, layout := newTestWorkspace(t)
	fsys := &statErrorFs{Fs: afero.NewMemMapFs(), err: fs.ErrPermission}

	loc := service.NewDocumentLocator(fsys, layout, testWorkspaceConfig())
	_, err := loc.Locate(q12025, "BankA")

	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestDocumentLocator_ExtensionsWithoutDot(t *testing.T) {
	fs, layout := newTestWorkspace(t)
	dir := layout.DocumentDir(q12025, "BankA")
	writeFile(t, fs, dir+"/supplement.png", "x")

	cfg := testWorkspaceConfig()
	cfg.DocumentExtensions = []string{"PNG", " "}
	loc := service.NewDocumentLocator(fs, layout, cfg)
	path, err := loc.Locate(q12025, "BankA")

	require.NoError(t, err)
	assert.Equal(t, dir+"/supplement.png", path)
}

// statErrorFs fails every Stat with err.
type statErrorFs struct {
	afero.Fs
	err error
}

func (s *statErrorFs) Stat(name string) (fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "stat", Path: name, Err: s.err}
}

package service

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"bankmetrics/internal/config"
	"bankmetrics/internal/domain"
	"bankmetrics/internal/workspace"
)

// DocumentLocator finds the input document for one bank and quarter.
type DocumentLocator interface {
	Locate(q domain.Quarter, bank string) (string, error)
}

type documentLocator struct {
	fs         afero.Fs
	layout     *workspace.Layout
	marker     string
	extensions map[string]bool
}

// NewDocumentLocator creates a DocumentLocator using the workspace marker and extensions.
func NewDocumentLocator(fsys afero.Fs, layout *workspace.Layout, cfg config.WorkspaceConfig) DocumentLocator {
	exts := make(map[string]bool, len(cfg.DocumentExtensions))
	for _, ext := range cfg.DocumentExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return &documentLocator{
		fs:         fsys,
		layout:     layout,
		marker:     strings.ToLower(cfg.DocumentMarker),
		extensions: exts,
	}
}

// Locate returns the lexically first file in <root>/documents/<q>/<bank> whose lower-cased
// name contains the marker and whose extension is recognized.
// A missing directory yields domain.ErrDocumentDirMissing, no candidate yields
// domain.ErrNoMatchingDocument. Any other filesystem error is returned wrapped.
func (l *documentLocator) Locate(q domain.Quarter, bank string) (string, error) {
	dir := l.layout.DocumentDir(q, bank)

	info, err := l.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrDocumentDirMissing, dir)
		}
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("document path %s is not a directory", dir)
	}

	// afero.ReadDir returns entries sorted by name.
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !l.matches(e.Name()) {
			continue
		}
		return filepath.Join(dir, e.Name()), nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrNoMatchingDocument, dir)
}

func (l *documentLocator) matches(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, l.marker) && l.extensions[filepath.Ext(lower)]
}

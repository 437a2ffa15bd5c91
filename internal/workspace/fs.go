package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// DirEnsurer implements port.PathEnsurer on an afero filesystem.
type DirEnsurer struct {
	fs afero.Fs
}

// NewDirEnsurer creates a DirEnsurer.
func NewDirEnsurer(fs afero.Fs) *DirEnsurer {
	return &DirEnsurer{fs: fs}
}

// EnsureDir creates dir and any missing parents.
func (e *DirEnsurer) EnsureDir(dir string) error {
	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// EnsureParent creates the directory that will hold path.
func (e *DirEnsurer) EnsureParent(path string) error {
	return e.EnsureDir(filepath.Dir(path))
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place,
// so readers never observe a partially written file.
func WriteFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := fs.Chmod(tmpName, 0o644); err != nil && !os.IsNotExist(err) {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("renaming %s to %s: %w", tmpName, path, err)
	}
	return nil
}

package port

// PathEnsurer creates directories on demand. Both methods are idempotent.
type PathEnsurer interface {
	EnsureDir(dir string) error
	EnsureParent(path string) error
}

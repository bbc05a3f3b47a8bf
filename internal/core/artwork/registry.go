package artwork

import (
	"os"
	"sync"

	"aria-downloader/internal/shared"
)

// Registry tracks the scratch directories holding covers that only exist
// to be embedded, so they can be removed once a run finishes. One
// instance is created at startup and shared by every rip.
type Registry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{paths: make(map[string]struct{})}
}

// Register records a directory for removal at teardown. Registering the
// same path again is a no-op.
func (r *Registry) Register(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[path] = struct{}{}
}

// Teardown removes every registered directory, best effort. Directories
// that are already gone are fine; other removal errors are printed and
// swallowed so cleanup never fails a run. Safe to call more than once.
func (r *Registry) Teardown() {
	r.mu.Lock()
	paths := make([]string, 0, len(r.paths))
	for path := range r.paths {
		paths = append(paths, path)
	}
	r.mu.Unlock()

	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			shared.ColorWarning.Printf("⚠️ Failed to remove artwork directory %s: %v\n", path, err)
		}
	}
}

// Package lock provides the exclusive, OS-level advisory lock over a
// repository during mutation (component H), backed by gofrs/flock for
// cross-platform non-blocking TryLock semantics — the raw syscall.Flock
// helper in quay-claircore's integration tests is Unix-only and has no
// TryLock, which the LockBusy fail-fast requirement needs.
package lock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rpm-tool/rpm-tool/internal/model"
)

// Lock is an acquired repository lock; Release must be called exactly
// once to drop it.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the exclusive lock on <root>/.repodata.lock, creating the
// file if absent. It fails fast with ErrLockBusy if another process
// already holds it, per §7.
func Acquire(root string) (*Lock, error) {
	path := filepath.Join(root, ".repodata.lock")
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, model.NewFileError(model.ErrIo, path, fmt.Errorf("acquiring lock: %w", err))
	}
	if !locked {
		return nil, model.NewFileError(model.ErrLockBusy, path, fmt.Errorf("repository is locked by another process"))
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

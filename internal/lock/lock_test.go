package lock

import (
	"testing"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

func TestAcquireAndRelease(t *testing.T) {
	root := t.TempDir()
	l, err := Acquire(root)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("Release: %v", err)
	}
}

func TestAcquireFailsWhenAlreadyHeld(t *testing.T) {
	root := t.TempDir()
	first, err := Acquire(root)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer first.Release()

	_, err = Acquire(root)
	if err == nil {
		t.Fatalf("expected second Acquire to fail while the lock is held")
	}
	toolErr, ok := err.(*model.ToolError)
	if !ok {
		t.Fatalf("expected a *model.ToolError, got %T", err)
	}
	if toolErr.Kind != model.ErrLockBusy {
		t.Errorf("expected ErrLockBusy, got %v", toolErr.Kind)
	}
}

func TestAcquireAgainAfterRelease(t *testing.T) {
	root := t.TempDir()
	first, err := Acquire(root)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	second, err := Acquire(root)
	if err != nil {
		t.Fatalf("second Acquire after release: %v", err)
	}
	second.Release()
}

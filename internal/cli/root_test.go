package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

type wrappedErr struct {
	inner error
}

func (w *wrappedErr) Error() string { return fmt.Sprintf("wrapped: %v", w.inner) }
func (w *wrappedErr) Unwrap() error { return w.inner }

func TestAsToolErrorFindsDirectMatch(t *testing.T) {
	want := model.NewError(model.ErrIntegrity, errors.New("mismatch"))
	var got *model.ToolError
	if !asToolError(want, &got) {
		t.Fatalf("expected a direct *model.ToolError to be found")
	}
	if got != want {
		t.Errorf("expected the exact same ToolError instance back")
	}
}

func TestAsToolErrorWalksUnwrapChain(t *testing.T) {
	inner := model.NewError(model.ErrLockBusy, errors.New("locked"))
	outer := &wrappedErr{inner: inner}

	var got *model.ToolError
	if !asToolError(outer, &got) {
		t.Fatalf("expected asToolError to walk the Unwrap chain")
	}
	if got.Kind != model.ErrLockBusy {
		t.Errorf("expected ErrLockBusy, got %v", got.Kind)
	}
}

func TestAsToolErrorReturnsFalseWhenAbsent(t *testing.T) {
	var got *model.ToolError
	if asToolError(errors.New("plain"), &got) {
		t.Errorf("expected no ToolError to be found in a plain error")
	}
}

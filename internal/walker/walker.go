// Package walker implements the repository walker (component F):
// recursive discovery of *.rpm files under a root, excluding repodata/,
// with unbounded depth per spec §9's open question. Grounded on the
// teacher's internal/scanner/filesystem.go (filepath.Walk plus per-entry
// context cancellation), narrowed to RPM lead-magic detection instead of
// the teacher's multi-format byte/extension sniffing.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpm-tool/rpm-tool/internal/rpmformat"
)

// Found is one discovered package file: its path relative to root
// (slash-separated, never leading with '/') plus the facts needed for
// carry-over classification.
type Found struct {
	RelPath string
	AbsPath string
	Size    int64
	Mtime   int64
}

// Walk recursively discovers candidate *.rpm files under root. A file is a
// candidate when its lead magic matches, independent of extension, the
// same check component B itself performs — so the walker never
// misclassifies an extension-renamed RPM and never needs its own parsing
// dependency. Anything under a top-level "repodata" directory is skipped.
func Walk(ctx context.Context, root string) ([]Found, error) {
	var found []Found

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel == "repodata" || strings.HasPrefix(rel, "repodata/") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(rel, "repodata/") {
			return nil
		}

		ok, detectErr := rpmformat.HasLeadMagic(path)
		if detectErr != nil || !ok {
			return nil
		}

		found = append(found, Found{
			RelPath: rel,
			AbsPath: path,
			Size:    info.Size(),
			Mtime:   info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return found, nil
}

package reconciler

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rpm-tool/rpm-tool/internal/checksum"
	"github.com/rpm-tool/rpm-tool/internal/model"
	"github.com/rpm-tool/rpm-tool/internal/walker"
)

// Problem is one integrity mismatch found by Validate.
type Problem struct {
	LocationHref string
	Reason       string
}

// Validate checks every package recorded in root's existing index against
// the file it points at on disk (presence, size, sha256), and walks root to
// find any *.rpm present on disk but absent from the index. It never
// touches the lock or the index itself — it is read-only by design, so it
// can run concurrently with a Generate elsewhere.
func Validate(ctx context.Context, root string) ([]Problem, error) {
	pkgs, err := loadExistingPackages(root)
	if err != nil {
		return nil, model.NewError(model.ErrIo, err)
	}

	var problems []Problem
	indexed := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		indexed[p.LocationHref] = true

		path := filepath.Join(root, filepath.FromSlash(p.LocationHref))
		sum, size, err := checksum.File(path)
		if err != nil {
			problems = append(problems, Problem{LocationHref: p.LocationHref, Reason: fmt.Sprintf("missing or unreadable: %v", err)})
			continue
		}
		if size != p.Size {
			problems = append(problems, Problem{LocationHref: p.LocationHref, Reason: fmt.Sprintf("size mismatch: index has %d, disk has %d", p.Size, size)})
			continue
		}
		if sum != p.Checksum {
			problems = append(problems, Problem{LocationHref: p.LocationHref, Reason: fmt.Sprintf("sha256 mismatch: index has %s, disk has %s", p.Checksum, sum)})
		}
	}

	found, err := walker.Walk(ctx, root)
	if err != nil {
		return nil, model.NewError(model.ErrIo, err)
	}
	for _, f := range found {
		if !indexed[f.RelPath] {
			problems = append(problems, Problem{LocationHref: f.RelPath, Reason: "present on disk but absent from the index"})
		}
	}

	return problems, nil
}

package xmlcodec

import (
	"testing"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

func TestMarshalFilelistsRoundTripAndJoin(t *testing.T) {
	pkg := samplePackage()
	data, err := MarshalFilelists([]model.Package{pkg})
	if err != nil {
		t.Fatalf("MarshalFilelists: %v", err)
	}

	entries, err := UnmarshalFilelists(data)
	if err != nil {
		t.Fatalf("UnmarshalFilelists: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].PkgID != pkg.Checksum {
		t.Errorf("pkgid mismatch: got %q want %q", entries[0].PkgID, pkg.Checksum)
	}
	if len(entries[0].Files) != len(pkg.Files) {
		t.Errorf("expected all %d files preserved, got %d", len(pkg.Files), len(entries[0].Files))
	}

	primaryOnly := []model.Package{{Name: pkg.Name, Checksum: pkg.Checksum}}
	JoinFilelists(primaryOnly, entries)
	if len(primaryOnly[0].Files) != len(pkg.Files) {
		t.Errorf("JoinFilelists did not attach files by pkgid: %+v", primaryOnly[0].Files)
	}
}

func TestJoinFilelistsLeavesUnmatchedPackagesAlone(t *testing.T) {
	pkgs := []model.Package{{Name: "other", Checksum: "nomatch"}}
	JoinFilelists(pkgs, []FilelistsEntry{{PkgID: "different", Files: []model.FileEntry{{Path: "/a"}}}})
	if len(pkgs[0].Files) != 0 {
		t.Errorf("expected no files attached for an unmatched pkgid, got %+v", pkgs[0].Files)
	}
}

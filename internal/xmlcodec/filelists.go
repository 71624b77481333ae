package xmlcodec

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

// MarshalFilelists renders filelists.xml for pkgs, emitting every file
// (not just the primary.xml subset), keyed by pkgid per §4.C.
func MarshalFilelists(pkgs []model.Package) ([]byte, error) {
	doc := filelistsDoc{
		Xmlns: filelistsNamespace,
		Count: len(pkgs),
	}
	for _, p := range pkgs {
		epoch := "0"
		if p.Epoch > 0 {
			epoch = strconv.FormatInt(p.Epoch, 10)
		}
		fp := filelistsPkg{
			PkgID: p.Checksum,
			Name:  p.Name,
			Arch:  p.Arch,
			Version: xmlVersion{
				Epoch: epoch,
				Ver:   p.Version,
				Rel:   p.Release,
			},
		}
		for _, f := range p.Files {
			fp.Files = append(fp.Files, xmlFileRef{Type: fileTypeAttr(f.Kind), Path: f.Path})
		}
		doc.Packages = append(doc.Packages, fp)
	}
	return marshalDoc(doc)
}

// FilelistsEntry is one (pkgid, files) pair read from filelists.xml,
// joined onto primary.xml packages by the reconciler.
type FilelistsEntry struct {
	PkgID string
	Files []model.FileEntry
}

// UnmarshalFilelists parses filelists.xml into (pkgid, FileEntry[]) pairs.
func UnmarshalFilelists(data []byte) ([]FilelistsEntry, error) {
	var doc filelistsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal filelists.xml: %w", err)
	}
	out := make([]FilelistsEntry, 0, len(doc.Packages))
	for _, p := range doc.Packages {
		entry := FilelistsEntry{PkgID: p.PkgID}
		for _, f := range p.Files {
			entry.Files = append(entry.Files, model.FileEntry{Path: f.Path, Kind: fileKindFromAttr(f.Type)})
		}
		out = append(out, entry)
	}
	return out, nil
}

// JoinFilelists merges file lists read from filelists.xml onto packages
// parsed from primary.xml, matching by pkgid (= checksum).
func JoinFilelists(pkgs []model.Package, entries []FilelistsEntry) {
	byPkgID := make(map[string][]model.FileEntry, len(entries))
	for _, e := range entries {
		byPkgID[e.PkgID] = e.Files
	}
	for i := range pkgs {
		if files, ok := byPkgID[pkgs[i].Checksum]; ok {
			pkgs[i].Files = files
		}
	}
}

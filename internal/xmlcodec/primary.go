package xmlcodec

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// MarshalPrimary renders primary.xml for pkgs, already assumed to be in
// the caller's desired output order (the reconciler sorts before calling
// this). usefulFiles, when non-nil, is an extra predicate (the
// repodata.useful_files regex) widening which files also appear in
// <format> beyond the default path prefixes.
func MarshalPrimary(pkgs []model.Package, usefulFiles func(string) bool) ([]byte, error) {
	doc := primaryDoc{
		Xmlns:    commonNamespace,
		XmlnsRpm: rpmNamespace,
		Count:    len(pkgs),
	}
	for _, p := range pkgs {
		doc.Packages = append(doc.Packages, toPrimaryPkg(p, usefulFiles))
	}
	return marshalDoc(doc)
}

// UnmarshalPrimary parses primary.xml, keeping only type="rpm" entries
// (and entries with no type attribute) per §4.C. The returned packages carry only the fields primary.xml stores;
// filelists.xml entries must be joined in separately by pkgid.
func UnmarshalPrimary(data []byte) ([]model.Package, error) {
	var doc primaryDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal primary.xml: %w", err)
	}
	var out []model.Package
	for _, pp := range doc.Packages {
		if pp.Type != "rpm" && pp.Type != "" {
			continue
		}
		out = append(out, fromPrimaryPkg(pp))
	}
	return out, nil
}

func toPrimaryPkg(p model.Package, usefulFiles func(string) bool) primaryPkg {
	epoch := "0"
	if p.Epoch > 0 {
		epoch = strconv.FormatInt(p.Epoch, 10)
	}
	pkg := primaryPkg{
		Type: "rpm",
		Name: p.Name,
		Arch: p.Arch,
		Version: xmlVersion{
			Epoch: epoch,
			Ver:   p.Version,
			Rel:   p.Release,
		},
		Checksum: xmlChecksum{
			Type:  "sha256",
			PkgID: "YES",
			Value: p.Checksum,
		},
		Summary:     p.Summary,
		Description: p.Description,
		Packager:    p.Packager,
		URL:         p.URL,
		Time: xmlTime{
			File:  p.Mtime,
			Build: p.BuildTime,
		},
		Size: xmlSize{
			Package:   p.Size,
			Installed: p.InstalledSize,
			Archive:   p.ArchiveSize,
		},
		Location: xmlLocation{Href: p.LocationHref},
		Format: xmlFormat{
			License:   p.License,
			Vendor:    p.Vendor,
			Group:     p.Group,
			BuildHost: p.BuildHost,
			SourceRPM: p.SourceRPM,
		},
	}
	if p.HeaderStart != 0 || p.HeaderEnd != 0 {
		pkg.Format.HeaderRange = &xmlHdrRange{Start: p.HeaderStart, End: p.HeaderEnd}
	}
	pkg.Format.Provides = toDepEntries(p.Provides)
	pkg.Format.Requires = toDepEntries(p.Requires)
	pkg.Format.Conflicts = toDepEntries(p.Conflicts)
	pkg.Format.Obsoletes = toDepEntries(p.Obsoletes)
	for _, f := range p.PrimaryFiles(usefulFiles) {
		pkg.Format.Files = append(pkg.Format.Files, xmlFileRef{Type: fileTypeAttr(f.Kind), Path: f.Path})
	}
	return pkg
}

func fromPrimaryPkg(pp primaryPkg) model.Package {
	p := model.Package{
		Name:          pp.Name,
		Arch:          pp.Arch,
		Epoch:         parseEpoch(pp.Version.Epoch),
		Version:       pp.Version.Ver,
		Release:       pp.Version.Rel,
		Summary:       pp.Summary,
		Description:   pp.Description,
		Packager:      pp.Packager,
		URL:           pp.URL,
		Mtime:         pp.Time.File,
		BuildTime:     pp.Time.Build,
		Size:          pp.Size.Package,
		InstalledSize: pp.Size.Installed,
		ArchiveSize:   pp.Size.Archive,
		LocationHref:  pp.Location.Href,
		Checksum:      pp.Checksum.Value,
		License:       pp.Format.License,
		Vendor:        pp.Format.Vendor,
		Group:         pp.Format.Group,
		BuildHost:     pp.Format.BuildHost,
		SourceRPM:     pp.Format.SourceRPM,
		Provides:      fromDepEntries(pp.Format.Provides),
		Requires:      fromDepEntries(pp.Format.Requires),
		Conflicts:     fromDepEntries(pp.Format.Conflicts),
		Obsoletes:     fromDepEntries(pp.Format.Obsoletes),
	}
	if pp.Format.HeaderRange != nil {
		p.HeaderStart = pp.Format.HeaderRange.Start
		p.HeaderEnd = pp.Format.HeaderRange.End
	}
	for _, f := range pp.Format.Files {
		p.Files = append(p.Files, model.FileEntry{Path: f.Path, Kind: fileKindFromAttr(f.Type)})
	}
	return p
}

func fileTypeAttr(k model.FileKind) string {
	switch k {
	case model.FileKindDir:
		return "dir"
	case model.FileKindGhost:
		return "ghost"
	default:
		return ""
	}
}

func fileKindFromAttr(t string) model.FileKind {
	switch t {
	case "dir":
		return model.FileKindDir
	case "ghost":
		return model.FileKindGhost
	default:
		return model.FileKindFile
	}
}

func toDepEntries(entries []model.Entry) []xmlDepEntry {
	var out []xmlDepEntry
	for _, e := range entries {
		d := xmlDepEntry{
			Name:    e.Name,
			Flags:   e.Flags.String(),
			Epoch:   e.Epoch,
			Version: e.Version,
			Release: e.Release,
		}
		if e.Pre {
			d.Pre = "1"
		}
		out = append(out, d)
	}
	return out
}

func fromDepEntries(entries []xmlDepEntry) []model.Entry {
	var out []model.Entry
	for _, d := range entries {
		out = append(out, model.Entry{
			Name:    d.Name,
			Flags:   depFlagFromString(d.Flags),
			Epoch:   d.Epoch,
			Version: d.Version,
			Release: d.Release,
			Pre:     d.Pre == "1",
		})
	}
	return out
}

func depFlagFromString(s string) model.DepFlag {
	switch s {
	case "LT":
		return model.DepFlagLT
	case "GT":
		return model.DepFlagGT
	case "EQ":
		return model.DepFlagEQ
	case "LE":
		return model.DepFlagLE
	case "GE":
		return model.DepFlagGE
	default:
		return model.DepFlagNone
	}
}

func parseEpoch(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func marshalDoc(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xmlHeader)+len(body)+1)
	out = append(out, xmlHeader...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Package output renders a single parsed package as structured text for
// the "rpm dump" command (component I), in JSON, YAML, or XML. Grounded
// on the teacher's internal/utils output helpers for the dispatch-on-
// format shape; the XML branch reuses xmlcodec's <package> encoder so a
// dumped package and a primary.xml entry share one schema.
package output

import (
	"encoding/json"
	"fmt"

	"github.com/rpm-tool/rpm-tool/internal/model"
	"github.com/rpm-tool/rpm-tool/internal/xmlcodec"
	"gopkg.in/yaml.v3"
)

// Format selects the dump encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

// dumpPackage is the JSON/YAML projection of model.Package: field names
// are stable, documented output, independent of the Go struct's own
// field names so renaming internals doesn't change the CLI surface.
type dumpPackage struct {
	Name    string `json:"name" yaml:"name"`
	Epoch   int64  `json:"epoch" yaml:"epoch"`
	Version string `json:"version" yaml:"version"`
	Release string `json:"release" yaml:"release"`
	Arch    string `json:"arch" yaml:"arch"`

	PkgID         string `json:"pkgid" yaml:"pkgid"`
	Size          int64  `json:"size" yaml:"size"`
	InstalledSize int64  `json:"installed_size" yaml:"installed_size"`
	ArchiveSize   int64  `json:"archive_size" yaml:"archive_size"`

	Summary     string `json:"summary" yaml:"summary"`
	Description string `json:"description" yaml:"description"`
	License     string `json:"license" yaml:"license"`
	Vendor      string `json:"vendor" yaml:"vendor"`
	Group       string `json:"group" yaml:"group"`
	BuildHost   string `json:"build_host" yaml:"build_host"`
	SourceRPM   string `json:"source_rpm" yaml:"source_rpm"`
	BuildTime   int64  `json:"build_time" yaml:"build_time"`

	Provides   []dumpEntry `json:"provides" yaml:"provides"`
	Requires   []dumpEntry `json:"requires" yaml:"requires"`
	Conflicts  []dumpEntry `json:"conflicts" yaml:"conflicts"`
	Obsoletes  []dumpEntry `json:"obsoletes" yaml:"obsoletes"`

	Files []dumpFile `json:"files" yaml:"files"`

	Changelog []dumpChange `json:"changelog" yaml:"changelog"`
}

type dumpEntry struct {
	Name    string `json:"name" yaml:"name"`
	Flags   string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Epoch   string `json:"epoch,omitempty" yaml:"epoch,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Release string `json:"release,omitempty" yaml:"release,omitempty"`
	Pre     bool   `json:"pre,omitempty" yaml:"pre,omitempty"`
}

type dumpFile struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
}

type dumpChange struct {
	Time   int64  `json:"time" yaml:"time"`
	Author string `json:"author" yaml:"author"`
	Text   string `json:"text" yaml:"text"`
}

func toDumpEntries(entries []model.Entry) []dumpEntry {
	out := make([]dumpEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, dumpEntry{
			Name:    e.Name,
			Flags:   e.Flags.String(),
			Epoch:   e.Epoch,
			Version: e.Version,
			Release: e.Release,
			Pre:     e.Pre,
		})
	}
	return out
}

func toDumpPackage(pkg model.Package) dumpPackage {
	files := make([]dumpFile, 0, len(pkg.Files))
	for _, f := range pkg.Files {
		files = append(files, dumpFile{Path: f.Path, Kind: f.Kind.String()})
	}
	changelog := make([]dumpChange, 0, len(pkg.Changelog))
	for _, c := range pkg.Changelog {
		changelog = append(changelog, dumpChange{Time: c.Time, Author: c.Author, Text: c.Text})
	}
	return dumpPackage{
		Name:          pkg.Name,
		Epoch:         pkg.Epoch,
		Version:       pkg.Version,
		Release:       pkg.Release,
		Arch:          pkg.Arch,
		PkgID:         pkg.Checksum,
		Size:          pkg.Size,
		InstalledSize: pkg.InstalledSize,
		ArchiveSize:   pkg.ArchiveSize,
		Summary:       pkg.Summary,
		Description:   pkg.Description,
		License:       pkg.License,
		Vendor:        pkg.Vendor,
		Group:         pkg.Group,
		BuildHost:     pkg.BuildHost,
		SourceRPM:     pkg.SourceRPM,
		BuildTime:     pkg.BuildTime,
		Provides:      toDumpEntries(pkg.Provides),
		Requires:      toDumpEntries(pkg.Requires),
		Conflicts:     toDumpEntries(pkg.Conflicts),
		Obsoletes:     toDumpEntries(pkg.Obsoletes),
		Files:         files,
		Changelog:     changelog,
	}
}

// Dump renders pkg in the given format. For FormatXML, the result reuses
// xmlcodec's primary <package> element so "rpm dump -f xml" output is a
// valid single-package fragment of what "repository generate" would emit.
func Dump(pkg model.Package, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(toDumpPackage(pkg), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling json: %w", err)
		}
		return append(data, '\n'), nil

	case FormatYAML:
		data, err := yaml.Marshal(toDumpPackage(pkg))
		if err != nil {
			return nil, fmt.Errorf("marshaling yaml: %w", err)
		}
		return data, nil

	case FormatXML:
		data, err := xmlcodec.MarshalPrimary([]model.Package{pkg}, nil)
		if err != nil {
			return nil, fmt.Errorf("marshaling xml: %w", err)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("unsupported dump format %q", format)
	}
}

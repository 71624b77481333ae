// Package model holds the in-memory records shared by the RPM parser, the
// XML codec, and the index reconciler.
package model

// DepFlag encodes the comparison sense of a dependency entry's version.
type DepFlag int

const (
	DepFlagNone DepFlag = 0
	DepFlagLT   DepFlag = 1 << iota
	DepFlagGT
	DepFlagEQ
)

const (
	DepFlagLE = DepFlagLT | DepFlagEQ
	DepFlagGE = DepFlagGT | DepFlagEQ
)

// String renders the flag the way primary.xml's "flags" attribute expects.
func (f DepFlag) String() string {
	switch f {
	case DepFlagLT:
		return "LT"
	case DepFlagGT:
		return "GT"
	case DepFlagEQ:
		return "EQ"
	case DepFlagLE:
		return "LE"
	case DepFlagGE:
		return "GE"
	default:
		return ""
	}
}

// Entry is one element of a dependency vector (provides/requires/conflicts/obsoletes).
type Entry struct {
	Name    string
	Flags   DepFlag
	Epoch   string
	Version string
	Release string
	Pre     bool
}

// FileKind classifies an entry in a package's file list.
type FileKind int

const (
	FileKindFile FileKind = iota
	FileKindDir
	FileKindGhost
)

func (k FileKind) String() string {
	switch k {
	case FileKindDir:
		return "dir"
	case FileKindGhost:
		return "ghost"
	default:
		return "file"
	}
}

// FileEntry is one file recorded in an RPM's header.
type FileEntry struct {
	Path string
	Kind FileKind
}

// ChangeEntry is one changelog record.
type ChangeEntry struct {
	Time   int64
	Author string
	Text   string
}

// Package is the canonical in-memory record for one RPM, shared by the
// parser (component B), the XML codec (component C) and the reconciler
// (component G).
type Package struct {
	// Identity
	Name    string
	Epoch   int64
	Version string
	Release string
	Arch    string

	// Provenance
	LocationHref string
	Size         int64
	Mtime        int64
	Checksum     string // sha256 hex, lowercase; also used as pkgid

	// Header facts
	Summary       string
	Description   string
	URL           string
	License       string
	Vendor        string
	Packager      string
	Group         string
	BuildHost     string
	SourceRPM     string
	BuildTime     int64
	ArchiveSize   int64
	InstalledSize int64

	// Header byte range within the RPM file, needed for <header-range> in
	// primary.xml. Set by the parser; opaque to everything downstream of it.
	HeaderStart int64
	HeaderEnd   int64

	// Dependency vectors
	Provides    []Entry
	Requires    []Entry
	Conflicts   []Entry
	Obsoletes   []Entry
	Recommends  []Entry
	Suggests    []Entry
	Supplements []Entry
	Enhances    []Entry

	// Files, ordered as they appear in the header
	Files []FileEntry

	// Changelog, ordered oldest-first as RPM itself stores it
	Changelog []ChangeEntry
}

// NEVRA returns the tuple that must be unique per repository.
func (p *Package) NEVRA() (name string, epoch int64, version, release, arch string) {
	return p.Name, p.Epoch, p.Version, p.Release, p.Arch
}

// PrimaryFiles returns the subset of Files that belongs in primary.xml,
// per the default path rules plus an optional extra pattern supplied by
// the caller (repodata.useful_files). filter may be nil.
func (p *Package) PrimaryFiles(filter func(string) bool) []FileEntry {
	var out []FileEntry
	for _, f := range p.Files {
		if isDefaultUsefulPath(f.Path) || (filter != nil && filter(f.Path)) {
			out = append(out, f)
		}
	}
	return out
}

func isDefaultUsefulPath(path string) bool {
	for _, prefix := range []string{"/usr/bin/", "/bin/", "/sbin/", "/usr/sbin/", "/etc/"} {
		if len(path) > len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

package xmlcodec

import (
	"strings"
	"testing"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

func samplePackage() model.Package {
	return model.Package{
		Name:          "example",
		Epoch:         2,
		Version:       "1.0",
		Release:       "1",
		Arch:          "x86_64",
		LocationHref:  "example-1.0-1.x86_64.rpm",
		Size:          1024,
		Mtime:         1700000000,
		Checksum:      "deadbeef",
		Summary:       "An example package",
		Description:   "Longer description.",
		URL:           "https://example.invalid",
		License:       "MIT",
		Vendor:        "Example Vendor",
		Packager:      "packager@example.invalid",
		Group:         "Applications/System",
		BuildHost:     "builder.example.invalid",
		SourceRPM:     "example-1.0-1.src.rpm",
		BuildTime:     1699999999,
		ArchiveSize:   2048,
		InstalledSize: 4096,
		HeaderStart:   96,
		HeaderEnd:     512,
		Requires: []model.Entry{
			{Name: "libc.so.6", Flags: model.DepFlagGE, Version: "2.17"},
		},
		Provides: []model.Entry{
			{Name: "example", Flags: model.DepFlagEQ, Epoch: "2", Version: "1.0", Release: "1"},
		},
		Files: []model.FileEntry{
			{Path: "/usr/bin/example", Kind: model.FileKindFile},
			{Path: "/usr/share/doc/example/README", Kind: model.FileKindFile},
			{Path: "/var/lib/example", Kind: model.FileKindDir},
		},
	}
}

func TestMarshalPrimaryRoundTrip(t *testing.T) {
	pkg := samplePackage()
	data, err := MarshalPrimary([]model.Package{pkg}, nil)
	if err != nil {
		t.Fatalf("MarshalPrimary: %v", err)
	}
	if !strings.HasPrefix(string(data), xmlHeader) {
		t.Errorf("missing xml header: %q", data[:40])
	}

	out, err := UnmarshalPrimary(data)
	if err != nil {
		t.Fatalf("UnmarshalPrimary: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 package, got %d", len(out))
	}
	got := out[0]
	if got.Name != pkg.Name || got.Epoch != pkg.Epoch || got.Version != pkg.Version || got.Release != pkg.Release {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.Checksum != pkg.Checksum {
		t.Errorf("checksum mismatch: got %q want %q", got.Checksum, pkg.Checksum)
	}
	if len(got.Requires) != 1 || got.Requires[0].Flags != model.DepFlagGE {
		t.Errorf("requires round-trip mismatch: %+v", got.Requires)
	}
}

func TestMarshalPrimaryFiltersToUsefulFiles(t *testing.T) {
	pkg := samplePackage()
	data, err := MarshalPrimary([]model.Package{pkg}, nil)
	if err != nil {
		t.Fatalf("MarshalPrimary: %v", err)
	}
	if strings.Contains(string(data), "/var/lib/example") {
		t.Errorf("expected non-default path to be excluded without a useful_files matcher")
	}
	if !strings.Contains(string(data), "/usr/bin/example") {
		t.Errorf("expected default-useful path /usr/bin/example to be included")
	}

	withExtra, err := MarshalPrimary([]model.Package{pkg}, func(p string) bool { return p == "/var/lib/example" })
	if err != nil {
		t.Fatalf("MarshalPrimary with matcher: %v", err)
	}
	if !strings.Contains(string(withExtra), "/var/lib/example") {
		t.Errorf("expected matcher-selected path to be included")
	}
}

func TestMarshalPrimaryEpochZeroWhenUnset(t *testing.T) {
	pkg := samplePackage()
	pkg.Epoch = 0
	data, err := MarshalPrimary([]model.Package{pkg}, nil)
	if err != nil {
		t.Fatalf("MarshalPrimary: %v", err)
	}
	if !strings.Contains(string(data), `epoch="0"`) {
		t.Errorf(`expected epoch="0" for an unset epoch, got: %s`, data)
	}
}

func TestUnmarshalPrimarySkipsNonRPMEntries(t *testing.T) {
	doc := []byte(xmlHeader + `<metadata xmlns="` + commonNamespace + `" packages="1">
  <package type="srpm">
    <name>ignored</name>
    <arch>src</arch>
    <version epoch="0" ver="1.0" rel="1"/>
    <checksum type="sha256" pkgid="YES">abc</checksum>
    <summary></summary>
    <description></description>
    <time file="0" build="0"/>
    <size package="0" installed="0" archive="0"/>
    <location href="ignored.src.rpm"/>
    <format></format>
  </package>
</metadata>`)
	out, err := UnmarshalPrimary(doc)
	if err != nil {
		t.Fatalf("UnmarshalPrimary: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected srpm entries to be skipped, got %d", len(out))
	}
}

package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rpm-tool/rpm-tool/internal/model"
	"gopkg.in/yaml.v3"
)

func samplePackage() model.Package {
	return model.Package{
		Name:     "example",
		Epoch:    1,
		Version:  "1.0",
		Release:  "2",
		Arch:     "x86_64",
		Checksum: "abc123",
		Summary:  "An example",
		Requires: []model.Entry{{Name: "libc.so.6", Flags: model.DepFlagGE, Version: "2.17"}},
		Files:    []model.FileEntry{{Path: "/usr/bin/example", Kind: model.FileKindFile}},
	}
}

func TestDumpJSON(t *testing.T) {
	data, err := Dump(samplePackage(), FormatJSON)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, data)
	}
	if decoded["name"] != "example" {
		t.Errorf("expected name=example, got %v", decoded["name"])
	}
	if decoded["pkgid"] != "abc123" {
		t.Errorf("expected pkgid to come from Checksum, got %v", decoded["pkgid"])
	}
}

func TestDumpJSONDefaultsWhenFormatEmpty(t *testing.T) {
	data, err := Dump(samplePackage(), "")
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(string(data), `"name": "example"`) {
		t.Errorf("expected empty format to default to JSON, got: %s", data)
	}
}

func TestDumpYAML(t *testing.T) {
	data, err := Dump(samplePackage(), FormatYAML)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid YAML output: %v\n%s", err, data)
	}
	if decoded["name"] != "example" {
		t.Errorf("expected name=example, got %v", decoded["name"])
	}
}

func TestDumpXMLReusesPrimaryPackageSchema(t *testing.T) {
	data, err := Dump(samplePackage(), FormatXML)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(string(data), "<metadata") {
		t.Errorf("expected XML dump to reuse the primary.xml <metadata> wrapper, got: %s", data)
	}
	if !strings.Contains(string(data), "<name>example</name>") {
		t.Errorf("expected package name in XML output, got: %s", data)
	}
}

func TestDumpUnsupportedFormat(t *testing.T) {
	if _, err := Dump(samplePackage(), Format("toml")); err == nil {
		t.Errorf("expected an error for an unsupported format")
	}
}

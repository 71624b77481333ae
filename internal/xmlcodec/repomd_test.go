package xmlcodec

import (
	"strings"
	"testing"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

func TestMarshalRepoMdRoundTrip(t *testing.T) {
	md := model.RepoMd{
		Revision: 1700000000,
		Data: map[model.DataKind]model.RepoMdData{
			model.DataKindPrimary: {
				Kind:         model.DataKindPrimary,
				LocationHref: "repodata/abc-primary.xml.gz",
				Checksum:     "abc",
				OpenChecksum: "def",
				Size:         100,
				OpenSize:     200,
				Timestamp:    1700000000,
			},
			model.DataKindFilelists: {
				Kind:         model.DataKindFilelists,
				LocationHref: "repodata/ghi-filelists.xml.gz",
				Checksum:     "ghi",
				OpenChecksum: "jkl",
				Size:         50,
				OpenSize:     90,
				Timestamp:    1700000001,
			},
		},
	}

	data, err := MarshalRepoMd(md)
	if err != nil {
		t.Fatalf("MarshalRepoMd: %v", err)
	}

	got, err := UnmarshalRepoMd(data)
	if err != nil {
		t.Fatalf("UnmarshalRepoMd: %v", err)
	}
	if got.Revision != md.Revision {
		t.Errorf("revision mismatch: got %d want %d", got.Revision, md.Revision)
	}
	if len(got.Data) != len(md.Data) {
		t.Fatalf("expected %d data entries, got %d", len(md.Data), len(got.Data))
	}
	for kind, want := range md.Data {
		gotEntry, ok := got.Data[kind]
		if !ok {
			t.Fatalf("missing data entry for kind %q", kind)
		}
		if gotEntry.LocationHref != want.LocationHref || gotEntry.Checksum != want.Checksum || gotEntry.OpenChecksum != want.OpenChecksum {
			t.Errorf("entry %q mismatch: got %+v want %+v", kind, gotEntry, want)
		}
	}
}

func TestMarshalRepoMdOrdersPrimaryFilelistsOther(t *testing.T) {
	md := model.RepoMd{
		Data: map[model.DataKind]model.RepoMdData{
			model.DataKindOther:     {Kind: model.DataKindOther, LocationHref: "c"},
			model.DataKindPrimary:   {Kind: model.DataKindPrimary, LocationHref: "a"},
			model.DataKindFilelists: {Kind: model.DataKindFilelists, LocationHref: "b"},
		},
	}
	data, err := MarshalRepoMd(md)
	if err != nil {
		t.Fatalf("MarshalRepoMd: %v", err)
	}
	primaryAt := strings.Index(string(data), `type="primary"`)
	filelistsAt := strings.Index(string(data), `type="filelists"`)
	otherAt := strings.Index(string(data), `type="other"`)
	if primaryAt < 0 || filelistsAt < primaryAt || otherAt < filelistsAt {
		t.Errorf("expected <data> order primary, filelists, other; got: %s", data)
	}
	doc, err := UnmarshalRepoMd(data)
	if err != nil {
		t.Fatalf("UnmarshalRepoMd: %v", err)
	}
	if len(doc.Data) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(doc.Data))
	}
}

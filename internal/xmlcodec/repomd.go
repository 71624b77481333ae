package xmlcodec

import (
	"encoding/xml"
	"fmt"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

// MarshalRepoMd renders repomd.xml. revision is the current Unix time in
// seconds. It is not the only wall-clock value: each <data> entry's
// timestamp is also the publish time, so both change between runs.
func MarshalRepoMd(md model.RepoMd) ([]byte, error) {
	doc := repomdDoc{
		Xmlns:    repoNamespace,
		Revision: md.Revision,
	}
	// Deterministic order: primary, filelists, other — matches the order
	// those artifacts are produced in by the reconciler.
	for _, kind := range []model.DataKind{model.DataKindPrimary, model.DataKindFilelists, model.DataKindOther} {
		d, ok := md.Data[kind]
		if !ok {
			continue
		}
		doc.Data = append(doc.Data, repomdDocData{
			Type: string(kind),
			Checksum: repomdChecksum{
				Type:  "sha256",
				Value: d.Checksum,
			},
			OpenChecksum: &repomdChecksum{
				Type:  "sha256",
				Value: d.OpenChecksum,
			},
			Location:  xmlLocation{Href: d.LocationHref},
			Timestamp: d.Timestamp,
			Size:      d.Size,
			OpenSize:  d.OpenSize,
		})
	}
	return marshalDoc(doc)
}

// UnmarshalRepoMd parses repomd.xml.
func UnmarshalRepoMd(data []byte) (model.RepoMd, error) {
	var doc repomdDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return model.RepoMd{}, fmt.Errorf("unmarshal repomd.xml: %w", err)
	}
	md := model.RepoMd{
		Revision: doc.Revision,
		Data:     make(map[model.DataKind]model.RepoMdData, len(doc.Data)),
	}
	for _, d := range doc.Data {
		kind := model.DataKind(d.Type)
		entry := model.RepoMdData{
			Kind:         kind,
			LocationHref: d.Location.Href,
			Checksum:     d.Checksum.Value,
			Size:         d.Size,
			OpenSize:     d.OpenSize,
			Timestamp:    d.Timestamp,
		}
		if d.OpenChecksum != nil {
			entry.OpenChecksum = d.OpenChecksum.Value
		}
		md.Data[kind] = entry
	}
	return md, nil
}

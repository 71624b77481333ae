package rpmformat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// leadSize is the fixed size of the RPM lead; its contents past the magic
// are legacy and ignored for metadata purposes.
const leadSize = 96

var leadMagic = [4]byte{0xED, 0xAB, 0xEE, 0xDB}

const (
	headerMagicLen = 3
	headerPreamble = headerMagicLen + 1 + 4 // magic + version + 4 reserved bytes
)

var headerMagic = [3]byte{0x8E, 0xAD, 0xE8}

// indexRecord is one 16-byte entry of a header's index.
type indexRecord struct {
	Tag    uint32
	Type   tagType
	Offset uint32
	Count  uint32
}

// header is a decoded tagged-record header: its index records plus the
// raw data store they point into.
type header struct {
	records []indexRecord
	store   []byte
	// start/end are byte offsets of this header within the whole RPM file,
	// needed to populate Package.HeaderStart/HeaderEnd for <header-range>.
	start, end int64
}

// readHeader reads one header (signature or main) starting at the
// reader's current position, returning the decoded header and the number
// of bytes consumed.
func readHeader(r io.Reader, fileOffset int64) (*header, int64, error) {
	var preamble [headerPreamble]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, 0, fmt.Errorf("reading header preamble: %w", err)
	}
	if [3]byte{preamble[0], preamble[1], preamble[2]} != headerMagic {
		return nil, 0, fmt.Errorf("bad header magic %x", preamble[:3])
	}
	if preamble[3] != 0x01 {
		return nil, 0, fmt.Errorf("unsupported header version %d", preamble[3])
	}

	var counts [8]byte
	if _, err := io.ReadFull(r, counts[:]); err != nil {
		return nil, 0, fmt.Errorf("reading header counts: %w", err)
	}
	nindex := binary.BigEndian.Uint32(counts[0:4])
	hsize := binary.BigEndian.Uint32(counts[4:8])

	indexBytes := make([]byte, int(nindex)*16)
	if _, err := io.ReadFull(r, indexBytes); err != nil {
		return nil, 0, fmt.Errorf("reading %d index records: %w", nindex, err)
	}

	store := make([]byte, hsize)
	if _, err := io.ReadFull(r, store); err != nil {
		return nil, 0, fmt.Errorf("reading %d byte data store: %w", hsize, err)
	}

	records := make([]indexRecord, nindex)
	for i := range records {
		b := indexBytes[i*16 : i*16+16]
		records[i] = indexRecord{
			Tag:    binary.BigEndian.Uint32(b[0:4]),
			Type:   tagType(binary.BigEndian.Uint32(b[4:8])),
			Offset: binary.BigEndian.Uint32(b[8:12]),
			Count:  binary.BigEndian.Uint32(b[12:16]),
		}
	}

	consumed := int64(headerPreamble) + 8 + int64(len(indexBytes)) + int64(len(store))
	return &header{
		records: records,
		store:   store,
		start:   fileOffset,
		end:     fileOffset + consumed,
	}, consumed, nil
}

func (h *header) find(tag uint32) (indexRecord, bool) {
	for _, rec := range h.records {
		if rec.Tag == tag {
			return rec, true
		}
	}
	return indexRecord{}, false
}

// padTo8 returns the number of padding bytes needed to align n to an
// 8-byte boundary, per spec §4.B ("padded up to 8-byte alignment").
func padTo8(n int64) int64 {
	rem := n % 8
	if rem == 0 {
		return 0
	}
	return 8 - rem
}

package rpmformat

import (
	"fmt"
	"strings"
)

// decodeString reads a single STRING-typed tag; count is ignored per §4.B.
func decodeString(h *header, tag uint32) (string, bool, error) {
	rec, ok := h.find(tag)
	if !ok {
		return "", false, nil
	}
	if rec.Type != typeString {
		return "", false, fmt.Errorf("tag %d: expected STRING, got type %d", tag, rec.Type)
	}
	c := newCursor(h.store)
	s, _, err := c.CString(int(rec.Offset))
	if err != nil {
		return "", false, fmt.Errorf("tag %d: %w", tag, err)
	}
	return s, true, nil
}

// decodeI18NFirst reads the first locale entry of an I18NSTRING-typed tag,
// which is what spec §4.B calls "first" for Summary/Description/Group. It
// also tolerates a plain STRING encoding, which some headers use when only
// the C locale is present.
func decodeI18NFirst(h *header, tag uint32) (string, bool, error) {
	rec, ok := h.find(tag)
	if !ok {
		return "", false, nil
	}
	if rec.Type != typeI18NString && rec.Type != typeString {
		return "", false, fmt.Errorf("tag %d: expected I18NSTRING, got type %d", tag, rec.Type)
	}
	c := newCursor(h.store)
	s, _, err := c.CString(int(rec.Offset))
	if err != nil {
		return "", false, fmt.Errorf("tag %d: %w", tag, err)
	}
	return s, true, nil
}

// decodeStringArray reads a STRING_ARRAY-typed tag of count entries.
func decodeStringArray(h *header, tag uint32) ([]string, error) {
	rec, ok := h.find(tag)
	if !ok {
		return nil, nil
	}
	if rec.Type != typeStringArray {
		return nil, fmt.Errorf("tag %d: expected STRING_ARRAY, got type %d", tag, rec.Type)
	}
	c := newCursor(h.store)
	ss, err := c.CStrings(int(rec.Offset), int(rec.Count))
	if err != nil {
		return nil, fmt.Errorf("tag %d: %w", tag, err)
	}
	return ss, nil
}

// decodeInt decodes a single scalar integer tag of any INT* width into an
// int64, returning ok=false when the tag is absent.
func decodeInt(h *header, tag uint32) (int64, bool, error) {
	rec, ok := h.find(tag)
	if !ok {
		return 0, false, nil
	}
	c := newCursor(h.store)
	v, err := decodeIntAt(c, rec.Type, int(rec.Offset))
	if err != nil {
		return 0, false, fmt.Errorf("tag %d: %w", tag, err)
	}
	return v, true, nil
}

// decodeIntArray decodes an array of count integers of any INT* width.
func decodeIntArray(h *header, tag uint32) ([]int64, error) {
	rec, ok := h.find(tag)
	if !ok {
		return nil, nil
	}
	width, err := widthOf(rec.Type)
	if err != nil {
		return nil, fmt.Errorf("tag %d: %w", tag, err)
	}
	c := newCursor(h.store)
	out := make([]int64, rec.Count)
	for i := range out {
		v, err := decodeIntAt(c, rec.Type, int(rec.Offset)+i*width)
		if err != nil {
			return nil, fmt.Errorf("tag %d[%d]: %w", tag, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func widthOf(t tagType) (int, error) {
	switch t {
	case typeChar, typeInt8:
		return 1, nil
	case typeInt16:
		return 2, nil
	case typeInt32:
		return 4, nil
	case typeInt64:
		return 8, nil
	default:
		return 0, fmt.Errorf("unknown tag value type %d", t)
	}
}

func decodeIntAt(c *cursor, t tagType, offset int) (int64, error) {
	switch t {
	case typeChar, typeInt8:
		v, err := c.Uint8(offset)
		return int64(v), err
	case typeInt16:
		v, err := c.Uint16(offset)
		return int64(v), err
	case typeInt32:
		v, err := c.Uint32(offset)
		return int64(v), err
	case typeInt64:
		v, err := c.Uint64(offset)
		return int64(v), err
	default:
		return 0, fmt.Errorf("unknown tag value type %d", t)
	}
}

// normalizeSummary collapses the summary to its first line with
// surrounding whitespace trimmed, per spec §4.B.
func normalizeSummary(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// normalizeDescription preserves internal newlines but strips trailing
// whitespace, per spec §4.B.
func normalizeDescription(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}

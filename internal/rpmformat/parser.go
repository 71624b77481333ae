// Package rpmformat hand-decodes the RPM binary layout — lead, signature
// header, main header — into model.Package records. It deliberately does
// not depend on a third-party RPM library: decoding the tagged-record
// header format is this tool's core deliverable, not a concern delegated
// to an import.
package rpmformat

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rpm-tool/rpm-tool/internal/model"
)

// ParseError reports a failure to decode an RPM file, with enough context
// for the reconciler to log it at warn and skip the file, or for `rpm
// dump` to make it the fatal process error.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(path, reason string, err error) error {
	return &ParseError{Path: path, Reason: reason, Err: err}
}

// Parse decodes path in full: lead, both headers, and the SHA-256
// checksum of the whole file. The returned Package.LocationHref is left
// empty; callers (component G/F) fill it in from the file's
// repository-relative path.
func Parse(path string) (*model.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, parseErr(path, "open", err)
	}
	defer f.Close()

	sum := sha256.New()
	tee := io.TeeReader(f, sum)

	pkg, err := parseHeaders(tee, path)
	if err != nil {
		return nil, err
	}

	// Drain the rest of the file (payload) through the checksum without
	// holding it in memory.
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return nil, parseErr(path, "reading payload", err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, parseErr(path, "stat", err)
	}

	pkg.Size = info.Size()
	pkg.Mtime = info.ModTime().Unix()
	pkg.Checksum = hex.EncodeToString(sum.Sum(nil))
	return pkg, nil
}

// ParseHeaderOnly decodes lead and headers but skips hashing the file
// bytes; the caller is expected to supply Package.Checksum and Package.Size
// itself. The reconciler does not use it; it calls Parse.
func ParseHeaderOnly(path string) (*model.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, parseErr(path, "open", err)
	}
	defer f.Close()
	return parseHeaders(f, path)
}

func parseHeaders(r io.Reader, path string) (*model.Package, error) {
	var lead [leadSize]byte
	if _, err := io.ReadFull(r, lead[:]); err != nil {
		return nil, parseErr(path, "reading lead", err)
	}
	if [4]byte{lead[0], lead[1], lead[2], lead[3]} != leadMagic {
		return nil, parseErr(path, "bad lead magic", nil)
	}

	sigHeader, sigConsumed, err := readHeader(r, leadSize)
	if err != nil {
		return nil, parseErr(path, "reading signature header", err)
	}

	// The signature header is padded to an 8-byte boundary; the main
	// header immediately follows the padding.
	if pad := padTo8(sigConsumed); pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return nil, parseErr(path, "reading signature padding", err)
		}
		sigConsumed += pad
	}
	_ = sigHeader // consumed only for lead-to-header alignment, per §4.B

	mainHeader, _, err := readHeader(r, leadSize+sigConsumed)
	if err != nil {
		return nil, parseErr(path, "reading main header", err)
	}

	pkg, err := decodePackage(mainHeader)
	if err != nil {
		return nil, parseErr(path, "decoding header tags", err)
	}
	return pkg, nil
}

func decodePackage(h *header) (*model.Package, error) {
	pkg := &model.Package{
		HeaderStart: h.start,
		HeaderEnd:   h.end,
	}

	var err error
	if pkg.Name, _, err = decodeString(h, tagName); err != nil {
		return nil, err
	}
	if pkg.Version, _, err = decodeString(h, tagVersion); err != nil {
		return nil, err
	}
	if pkg.Release, _, err = decodeString(h, tagRelease); err != nil {
		return nil, err
	}
	if pkg.Arch, _, err = decodeString(h, tagArch); err != nil {
		return nil, err
	}
	if pkg.Vendor, _, err = decodeString(h, tagVendor); err != nil {
		return nil, err
	}
	if pkg.License, _, err = decodeString(h, tagLicense); err != nil {
		return nil, err
	}
	if pkg.Packager, _, err = decodeString(h, tagPackager); err != nil {
		return nil, err
	}
	if pkg.URL, _, err = decodeString(h, tagURL); err != nil {
		return nil, err
	}
	if pkg.SourceRPM, _, err = decodeString(h, tagSourceRPM); err != nil {
		return nil, err
	}
	if pkg.BuildHost, _, err = decodeString(h, tagBuildHost); err != nil {
		return nil, err
	}

	summary, _, err := decodeI18NFirst(h, tagSummary)
	if err != nil {
		return nil, err
	}
	pkg.Summary = normalizeSummary(summary)

	description, _, err := decodeI18NFirst(h, tagDescription)
	if err != nil {
		return nil, err
	}
	pkg.Description = normalizeDescription(description)

	if pkg.Group, _, err = decodeI18NFirst(h, tagGroup); err != nil {
		return nil, err
	}

	epoch, hasEpoch, err := decodeInt(h, tagEpoch)
	if err != nil {
		return nil, err
	}
	if hasEpoch {
		pkg.Epoch = epoch
	} // else ⇒ emitted as epoch="0" by the writer, per §8 boundary

	if pkg.BuildTime, _, err = decodeInt(h, tagBuildTime); err != nil {
		return nil, err
	}
	if pkg.InstalledSize, _, err = decodeInt(h, tagSize); err != nil {
		return nil, err
	}
	if pkg.ArchiveSize, _, err = decodeInt(h, tagArchiveSize); err != nil {
		return nil, err
	}

	if pkg.Provides, err = decodeDepVector(h, tagProvideName, tagProvideFlags, tagProvideVer, false); err != nil {
		return nil, err
	}
	if pkg.Requires, err = decodeDepVector(h, tagRequireName, tagRequireFlags, tagRequireVer, true); err != nil {
		return nil, err
	}
	if pkg.Conflicts, err = decodeDepVector(h, tagConflictName, tagConflictFlags, tagConflictVer, false); err != nil {
		return nil, err
	}
	if pkg.Obsoletes, err = decodeDepVector(h, tagObsoleteName, tagObsoleteFlags, tagObsoleteVer, false); err != nil {
		return nil, err
	}
	if pkg.Recommends, err = decodeDepVector(h, tagRecommendName, tagRecommendFlag, tagRecommendVer, false); err != nil {
		return nil, err
	}
	if pkg.Suggests, err = decodeDepVector(h, tagSuggestName, tagSuggestFlag, tagSuggestVer, false); err != nil {
		return nil, err
	}
	if pkg.Supplements, err = decodeDepVector(h, tagSupplementNam, tagSupplementFlg, tagSupplementVer, false); err != nil {
		return nil, err
	}
	if pkg.Enhances, err = decodeDepVector(h, tagEnhanceName, tagEnhanceFlag, tagEnhanceVer, false); err != nil {
		return nil, err
	}

	if pkg.Files, err = decodeFiles(h); err != nil {
		return nil, err
	}

	if pkg.Changelog, err = decodeChangelog(h); err != nil {
		return nil, err
	}

	return pkg, nil
}

// decodeDepVector zips the Name/Flags/Version arrays of a dependency tag
// triple into ordered Entry records, per §4.B. requireSemantics controls
// whether bit 0x40 is interpreted as the "pre" marker (only meaningful for
// Requires).
func decodeDepVector(h *header, nameTag, flagsTag, verTag uint32, requireSemantics bool) ([]model.Entry, error) {
	names, err := decodeStringArray(h, nameTag)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	flags, err := decodeIntArray(h, flagsTag)
	if err != nil {
		return nil, err
	}
	versions, err := decodeStringArray(h, verTag)
	if err != nil {
		return nil, err
	}
	if len(flags) != len(names) || len(versions) != len(names) {
		return nil, fmt.Errorf("dependency vector %d: mismatched array lengths (%d names, %d flags, %d versions)",
			nameTag, len(names), len(flags), len(versions))
	}

	entries := make([]model.Entry, len(names))
	for i, name := range names {
		raw := flags[i]
		e := model.Entry{Name: name}
		e.Flags = senseToDepFlag(raw)
		if requireSemantics && raw&sensePreReq != 0 {
			e.Pre = true
		}
		e.Epoch, e.Version, e.Release = splitEVR(versions[i])
		entries[i] = e
	}
	return entries, nil
}

func senseToDepFlag(raw int64) model.DepFlag {
	var f model.DepFlag
	if raw&senseLess != 0 {
		f |= model.DepFlagLT
	}
	if raw&senseGreater != 0 {
		f |= model.DepFlagGT
	}
	if raw&senseEqual != 0 {
		f |= model.DepFlagEQ
	}
	return f
}

// splitEVR splits "epoch:version-release" at the first ':' and the last
// '-'; both boundaries are optional, per §4.B.
func splitEVR(s string) (epoch, version, release string) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		epoch = s[:idx]
		s = s[idx+1:]
	}
	if idx := strings.LastIndexByte(s, '-'); idx >= 0 {
		version = s[:idx]
		release = s[idx+1:]
	} else {
		version = s
	}
	return epoch, version, release
}

// decodeFiles reconstructs the file list. If OldFilenames (1027) is
// present it wins outright over the basename/dirname/dirindex triple, per
// the boundary case in §8.
func decodeFiles(h *header) ([]model.FileEntry, error) {
	oldNames, err := decodeStringArray(h, tagOldFilenames)
	if err != nil {
		return nil, err
	}

	modes, err := decodeIntArray(h, tagFileModes)
	if err != nil {
		return nil, err
	}
	flags, err := decodeIntArray(h, tagFileFlags)
	if err != nil {
		return nil, err
	}

	var paths []string
	if len(oldNames) > 0 {
		paths = oldNames
	} else {
		baseNames, err := decodeStringArray(h, tagBaseNames)
		if err != nil {
			return nil, err
		}
		if len(baseNames) == 0 {
			return nil, nil
		}
		dirNames, err := decodeStringArray(h, tagDirNames)
		if err != nil {
			return nil, err
		}
		dirIndexes, err := decodeIntArray(h, tagDirIndexes)
		if err != nil {
			return nil, err
		}
		if len(dirIndexes) != len(baseNames) {
			return nil, fmt.Errorf("file list: %d basenames but %d dirindexes", len(baseNames), len(dirIndexes))
		}
		paths = make([]string, len(baseNames))
		for i, base := range baseNames {
			di := int(dirIndexes[i])
			if di < 0 || di >= len(dirNames) {
				return nil, fmt.Errorf("file list: dirindex %d out of range (%d dirnames)", di, len(dirNames))
			}
			paths[i] = dirNames[di] + base
		}
	}

	entries := make([]model.FileEntry, len(paths))
	for i, p := range paths {
		kind := model.FileKindFile
		if i < len(flags) && flags[i]&fileFlagGhost != 0 {
			kind = model.FileKindGhost
		} else if i < len(modes) && modes[i]&modeFmtMask == modeDir {
			kind = model.FileKindDir
		}
		entries[i] = model.FileEntry{Path: p, Kind: kind}
	}
	return entries, nil
}

func decodeChangelog(h *header) ([]model.ChangeEntry, error) {
	times, err := decodeIntArray(h, tagChangelogTime)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, nil
	}
	names, err := decodeStringArray(h, tagChangelogName)
	if err != nil {
		return nil, err
	}
	texts, err := decodeStringArray(h, tagChangelogText)
	if err != nil {
		return nil, err
	}
	if len(names) != len(times) || len(texts) != len(times) {
		return nil, fmt.Errorf("changelog: mismatched array lengths (%d times, %d names, %d texts)",
			len(times), len(names), len(texts))
	}
	entries := make([]model.ChangeEntry, len(times))
	for i := range times {
		entries[i] = model.ChangeEntry{Time: times[i], Author: names[i], Text: texts[i]}
	}
	return entries, nil
}

// HasLeadMagic reports whether the first 4 bytes of path are the RPM lead
// magic, used by the repository walker (component F) to identify
// candidate files independent of extension.
func HasLeadMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	var magic [4]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && n < 4 {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(magic[:], leadMagic[:]), nil
}

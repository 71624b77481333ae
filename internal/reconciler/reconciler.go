// Package reconciler drives the repodata build (component G): load
// whatever index already exists, walk the repository, decide which
// packages can be carried over unparsed and which must be (re)parsed,
// dispatch the latter onto the worker pool, and publish repomd.xml plus
// primary.xml(.gz)/filelists.xml(.gz) atomically. Grounded on
// other_examples/a7d1f0a3_e2llm-rpmrepo-update's repo-meta reconciliation
// pass and solus-project-ferryd's repo_index publish-then-rename
// sequencing; the worker dispatch itself reuses internal/workerpool.
package reconciler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rpm-tool/rpm-tool/internal/checksum"
	"github.com/rpm-tool/rpm-tool/internal/lock"
	"github.com/rpm-tool/rpm-tool/internal/logging"
	"github.com/rpm-tool/rpm-tool/internal/model"
	"github.com/rpm-tool/rpm-tool/internal/rpmformat"
	"github.com/rpm-tool/rpm-tool/internal/walker"
	"github.com/rpm-tool/rpm-tool/internal/workerpool"
	"github.com/rpm-tool/rpm-tool/internal/xmlcodec"
)

const (
	repodataDir = "repodata"
	repomdFile  = "repomd.xml"
)

// Options configures one Generate/AddFiles run.
type Options struct {
	// Root is the repository directory; Root/repodata holds the index.
	Root string
	// Concurrency is the worker pool size for parse+checksum jobs.
	Concurrency int
	// UsefulFiles extends which files each package lists in primary.xml,
	// beyond the built-in /usr/bin, /bin, /sbin, /usr/sbin, /etc prefixes.
	UsefulFiles func(string) bool
	// WriteFilelists controls whether filelists.xml(.gz) is produced;
	// some callers (tiny mirrors) skip it to save space per §4.G.
	WriteFilelists bool
	// Sign, when non-nil, produces repomd.xml.asc alongside repomd.xml.
	Sign func(data []byte) ([]byte, error)
	// Sink receives structured progress/diagnostic events.
	Sink logging.Sink
	// Now returns the current time; overridable by tests.
	Now func() time.Time
}

// Stats summarizes one reconciliation run.
type Stats struct {
	CarriedOver int
	Parsed      int
	Failed      int
	Removed     int
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Generate rebuilds (or incrementally updates) the full repodata index
// for every *.rpm file discovered under opts.Root. This is the Idle ->
// Locked -> Scanned -> Diffed -> Parsing -> Writing -> Published ->
// Released state machine from §4.G.
func Generate(ctx context.Context, opts Options) (Stats, error) {
	sink := opts.Sink
	if sink == nil {
		sink = logging.NopSink{}
	}

	l, err := lock.Acquire(opts.Root)
	if err != nil {
		return Stats{}, err
	}
	defer l.Release()

	known, err := loadKnownEntries(opts.Root)
	if err != nil {
		sink.Warnf("no usable existing index, rebuilding from scratch: %v", err)
		known = nil
	}

	found, err := walker.Walk(ctx, opts.Root)
	if err != nil {
		return Stats{}, model.NewError(model.ErrIo, err)
	}

	return reconcile(ctx, opts, sink, found, known)
}

// AddFiles incorporates an explicit list of RPM paths into the index
// without walking the repository, per §4.G's add-files specialization.
// Each path is always (re)parsed; carry-over does not apply, since the
// caller is explicitly asserting these are new or changed.
func AddFiles(ctx context.Context, opts Options, paths []string) (Stats, error) {
	sink := opts.Sink
	if sink == nil {
		sink = logging.NopSink{}
	}

	l, err := lock.Acquire(opts.Root)
	if err != nil {
		return Stats{}, err
	}
	defer l.Release()

	existing, err := loadExistingPackages(opts.Root)
	if err != nil {
		sink.Warnf("no usable existing index, starting empty: %v", err)
		existing = nil
	}

	var found []walker.Found
	for _, p := range paths {
		info, statErr := os.Stat(p)
		if statErr != nil {
			return Stats{}, model.NewFileError(model.ErrIo, p, statErr)
		}
		rel, relErr := filepath.Rel(opts.Root, p)
		if relErr != nil {
			rel = filepath.Base(p)
		}
		found = append(found, walker.Found{
			RelPath: filepath.ToSlash(rel),
			AbsPath: p,
			Size:    info.Size(),
			Mtime:   info.ModTime().Unix(),
		})
	}

	addedLocations := make(map[string]bool, len(found))
	for _, f := range found {
		addedLocations[f.RelPath] = true
	}

	var carry []model.Package
	for _, p := range existing {
		if !addedLocations[p.LocationHref] {
			carry = append(carry, p)
		}
	}

	// Unlike Generate, AddFiles never walks the repository, so carry-over
	// entries have no corresponding walker.Found to match against — they
	// must be kept unconditionally rather than via the found/known
	// intersection reconcileWithBase otherwise relies on.
	return reconcileWithBase(ctx, opts, sink, found, nil, carry)
}

// carryKey classifies entries from the existing index for O(1) carry-over
// lookup by (location, size, mtime).
func carryKey(loc string, size, mtime int64) model.KnownKey {
	return model.KnownKey{LocationHref: loc, Size: size, Mtime: mtime}
}

func reconcile(ctx context.Context, opts Options, sink logging.Sink, found []walker.Found, known map[model.KnownKey]model.Package) (Stats, error) {
	return reconcileWithBase(ctx, opts, sink, found, knownValues(known), nil)
}

func knownValues(known map[model.KnownKey]model.Package) []model.Package {
	var out []model.Package
	for _, p := range known {
		out = append(out, p)
	}
	return out
}

// reconcileWithBase is the shared core of Generate and AddFiles: given
// the set of files found on disk, a base set of already-known packages
// (keyed implicitly by location/size/mtime match) to test found entries
// against for carry-over, and a set of preIncluded packages kept in the
// output unconditionally (AddFiles's untouched existing entries, which
// have no walker.Found to match against), decide carry-over vs. parse,
// dispatch the parse jobs, assemble, sort, and publish.
func reconcileWithBase(ctx context.Context, opts Options, sink logging.Sink, found []walker.Found, base, preIncluded []model.Package) (Stats, error) {
	knownByKey := make(map[model.KnownKey]model.Package, len(base))
	for _, p := range base {
		knownByKey[carryKey(p.LocationHref, p.Size, p.Mtime)] = p
	}

	type job struct {
		found   walker.Found
		carried *model.Package
	}
	jobs := make([]job, len(found))
	for i, f := range found {
		j := job{found: f}
		if p, ok := knownByKey[carryKey(f.RelPath, f.Size, f.Mtime)]; ok {
			pc := p
			j.carried = &pc
		}
		jobs[i] = j
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	type outcome struct {
		pkg model.Package
		err error
	}
	poolJobs := make([]workerpool.Job[outcome], len(jobs))
	for i, j := range jobs {
		j := j
		poolJobs[i] = func(ctx context.Context) (outcome, error) {
			if j.carried != nil {
				return outcome{pkg: *j.carried}, nil
			}
			pkg, err := rpmformat.Parse(j.found.AbsPath)
			if err != nil {
				return outcome{}, err
			}
			pkg.LocationHref = j.found.RelPath
			pkg.Size = j.found.Size
			pkg.Mtime = j.found.Mtime
			return outcome{pkg: *pkg}, nil
		}
	}

	results := workerpool.Run(ctx, concurrency, poolJobs)

	var stats Stats
	byNevra := make(map[string]model.Package)
	var order []string
	for _, p := range preIncluded {
		key := nevraKey(p)
		if existing, dup := byNevra[key]; dup {
			if existing.Checksum == p.Checksum {
				// Idempotent rescan: same NEVRA and same bytes, not an error.
				continue
			}
			sink.Errorf("duplicate NEVRA %s: keeping %s, dropping %s", key, existing.LocationHref, p.LocationHref)
			continue
		}
		byNevra[key] = p
		order = append(order, key)
		stats.CarriedOver++
	}
	for i, r := range results {
		if r.Err != nil {
			stats.Failed++
			sink.Warnf("skipping %s: %v", jobs[i].found.RelPath, r.Err)
			continue
		}
		if jobs[i].carried != nil {
			stats.CarriedOver++
		} else {
			stats.Parsed++
		}
		key := nevraKey(r.Value.pkg)
		if existing, dup := byNevra[key]; dup {
			if existing.Checksum == r.Value.pkg.Checksum {
				// Idempotent rescan: same NEVRA and same bytes, not an error.
				continue
			}
			sink.Errorf("duplicate NEVRA %s: keeping %s, dropping %s", key, existing.LocationHref, r.Value.pkg.LocationHref)
			continue
		}
		byNevra[key] = r.Value.pkg
		order = append(order, key)
	}

	sort.Strings(order)
	pkgs := make([]model.Package, 0, len(order))
	for _, k := range order {
		pkgs = append(pkgs, byNevra[k])
	}
	stats.Removed = len(base) - stats.CarriedOver
	if stats.Removed < 0 {
		stats.Removed = 0
	}

	if err := ctx.Err(); err != nil {
		return stats, model.NewError(model.ErrIo, err)
	}

	if err := publish(opts, pkgs); err != nil {
		return stats, err
	}
	return stats, nil
}

// nevraKey renders a sortable, unique key: name, then zero-padded epoch,
// then version, release, arch — string comparison over this tuple matches
// the name/epoch/version/release/arch ordering §8 requires, since all
// fields sort lexically and epoch is rendered as a fixed-width decimal.
func nevraKey(p model.Package) string {
	return fmt.Sprintf("%s\x00%020d\x00%s\x00%s\x00%s", p.Name, p.Epoch, p.Version, p.Release, p.Arch)
}

// publish writes primary.xml(.gz), filelists.xml(.gz), and repomd.xml,
// the last via temp-file-plus-rename so a reader never observes a
// repomd.xml pointing at artifacts that don't yet exist on disk.
func publish(opts Options, pkgs []model.Package) error {
	dataDir := filepath.Join(opts.Root, repodataDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return model.NewFileError(model.ErrIo, dataDir, err)
	}

	md := model.RepoMd{Revision: opts.now().Unix(), Data: map[model.DataKind]model.RepoMdData{}}

	primaryXML, err := xmlcodec.MarshalPrimary(pkgs, opts.UsefulFiles)
	if err != nil {
		return model.NewError(model.ErrParseXml, err)
	}
	now := opts.now()
	if err := writeArtifact(dataDir, model.DataKindPrimary, "primary.xml.gz", primaryXML, opts.Concurrency, now, &md); err != nil {
		return err
	}

	if opts.WriteFilelists {
		filelistsXML, err := xmlcodec.MarshalFilelists(pkgs)
		if err != nil {
			return model.NewError(model.ErrParseXml, err)
		}
		if err := writeArtifact(dataDir, model.DataKindFilelists, "filelists.xml.gz", filelistsXML, opts.Concurrency, now, &md); err != nil {
			return err
		}
	}

	repomdXML, err := xmlcodec.MarshalRepoMd(md)
	if err != nil {
		return model.NewError(model.ErrParseXml, err)
	}

	finalPath := filepath.Join(dataDir, repomdFile)
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, repomdXML, 0o644); err != nil {
		return model.NewFileError(model.ErrIo, tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return model.NewFileError(model.ErrIo, finalPath, err)
	}

	if opts.Sign != nil {
		sig, err := opts.Sign(repomdXML)
		if err != nil {
			return model.NewError(model.ErrIo, fmt.Errorf("signing repomd.xml: %w", err))
		}
		sigPath := finalPath + ".asc"
		if err := os.WriteFile(sigPath, sig, 0o644); err != nil {
			return model.NewFileError(model.ErrIo, sigPath, err)
		}
	}

	removeStaleArtifacts(dataDir, md)
	return nil
}

// removeStaleArtifacts deletes any content-hashed file under dataDir left
// over from a previous revision that the just-published repomd.xml no
// longer references — run only after the rename above succeeds, so a
// crash mid-publish never leaves repomd.xml pointing at a file this
// function already removed.
func removeStaleArtifacts(dataDir string, md model.RepoMd) {
	keep := map[string]bool{repomdFile: true, repomdFile + ".tmp": true, repomdFile + ".asc": true}
	for _, d := range md.Data {
		keep[filepath.Base(d.LocationHref)] = true
	}
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || keep[e.Name()] {
			continue
		}
		os.Remove(filepath.Join(dataDir, e.Name()))
	}
}

// writeArtifact gzips body (in parallel when concurrency > 1), writes it
// to a content-hashed filename under dataDir, and records the resulting
// <data> entry in md.
func writeArtifact(dataDir string, kind model.DataKind, name string, body []byte, concurrency int, now time.Time, md *model.RepoMd) error {
	openChecksum := checksum.Bytes(body)

	compressed, err := xmlcodec.GzipCompressParallel(body, concurrency)
	if err != nil {
		return model.NewError(model.ErrIo, fmt.Errorf("compressing %s: %w", name, err))
	}

	checksumValue := checksum.Bytes(compressed)
	fileName := fmt.Sprintf("%s-%s", checksumValue, name)
	fullPath := filepath.Join(dataDir, fileName)
	if err := os.WriteFile(fullPath, compressed, 0o644); err != nil {
		return model.NewFileError(model.ErrIo, fullPath, err)
	}

	md.Data[kind] = model.RepoMdData{
		Kind:         kind,
		LocationHref: filepath.ToSlash(filepath.Join(repodataDir, fileName)),
		Checksum:     checksumValue,
		OpenChecksum: openChecksum,
		Size:         int64(len(compressed)),
		OpenSize:     int64(len(body)),
		Timestamp:    now.Unix(),
	}
	return nil
}

// loadKnownEntries reads the existing repodata/ (if any) into a map keyed
// by (location, size, mtime), ready for O(1) carry-over lookup during a
// walker-driven Generate.
func loadKnownEntries(root string) (map[model.KnownKey]model.Package, error) {
	pkgs, err := loadExistingPackages(root)
	if err != nil {
		return nil, err
	}
	out := make(map[model.KnownKey]model.Package, len(pkgs))
	for _, p := range pkgs {
		out[carryKey(p.LocationHref, p.Size, p.Mtime)] = p
	}
	return out, nil
}

// loadExistingPackages reads repomd.xml plus primary.xml(.gz) and, if
// present, filelists.xml(.gz), returning the fully joined package set. A
// missing or unreadable index is reported as an error so the caller can
// decide to fall back to a full rebuild.
func loadExistingPackages(root string) ([]model.Package, error) {
	dataDir := filepath.Join(root, repodataDir)
	repomdPath := filepath.Join(dataDir, repomdFile)

	repomdBytes, err := os.ReadFile(repomdPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", repomdPath, err)
	}
	md, err := xmlcodec.UnmarshalRepoMd(repomdBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", repomdPath, err)
	}

	primaryData, ok := md.Data[model.DataKindPrimary]
	if !ok {
		return nil, fmt.Errorf("%s has no primary data entry", repomdPath)
	}
	primaryXML, err := readArtifact(root, primaryData.LocationHref)
	if err != nil {
		return nil, err
	}
	pkgs, err := xmlcodec.UnmarshalPrimary(primaryXML)
	if err != nil {
		return nil, fmt.Errorf("parsing primary.xml: %w", err)
	}

	if filelistsData, ok := md.Data[model.DataKindFilelists]; ok {
		filelistsXML, err := readArtifact(root, filelistsData.LocationHref)
		if err != nil {
			return nil, err
		}
		entries, err := xmlcodec.UnmarshalFilelists(filelistsXML)
		if err != nil {
			return nil, fmt.Errorf("parsing filelists.xml: %w", err)
		}
		xmlcodec.JoinFilelists(pkgs, entries)
	}

	return pkgs, nil
}

func readArtifact(root, locationHref string) ([]byte, error) {
	path := filepath.Join(root, filepath.FromSlash(locationHref))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if filepath.Ext(path) == ".gz" {
		return xmlcodec.GzipDecompress(raw)
	}
	return raw, nil
}

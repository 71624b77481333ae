package xmlcodec

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// GzipCompress gzips data on a single goroutine. GzipCompressParallel
// falls back to it when workers <= 1 or the document yields a single
// shard; the reconciler passes its pool size, so with concurrency > 1
// artifacts are compressed in parallel.
func GzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GzipDecompress decompresses a gzip stream.
func GzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GzipCompressParallel shards an uncompressed primary.xml/filelists.xml
// document on whole <package> boundaries and gzips each shard on its own
// goroutine (bounded by workers), concatenating the resulting gzip
// members into one stream. RFC 1952 permits a gzip stream to be a
// concatenation of independent members, and gunzip of the result is
// required to be bit-identical to the single-threaded path, so this never
// reorders or recombines package XML itself — only its compression.
// shards must already be well-formed, complete <package>...</package>
// byte ranges (see splitPackageShards); workers <= 1 falls back to
// GzipCompress on the whole document.
func GzipCompressParallel(data []byte, workers int) ([]byte, error) {
	if workers <= 1 {
		return GzipCompress(data)
	}
	shards := splitPackageShards(data, workers)
	if len(shards) <= 1 {
		return GzipCompress(data)
	}

	results := make([][]byte, len(shards))
	errs := make([]error, len(shards))
	var wg sync.WaitGroup
	for i, shard := range shards {
		wg.Add(1)
		go func(i int, shard []byte) {
			defer wg.Done()
			compressed, err := GzipCompress(shard)
			results[i] = compressed
			errs[i] = err
		}(i, shard)
	}
	wg.Wait()

	var out bytes.Buffer
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("compressing shard %d: %w", i, err)
		}
		out.Write(results[i])
	}
	return out.Bytes(), nil
}

// packageCloseTag is the literal byte sequence every <package> element
// ends with in output this package produces (via encoding/xml, which
// escapes '<' in chardata, so this sequence cannot occur anywhere except
// as a genuine closing tag).
const packageCloseTag = "</package>"

// splitPackageShards divides data into at most n contiguous byte ranges,
// each ending immediately after a complete <package>...</package> element,
// so that concatenating the shards reconstructs data exactly. Splitting on
// whole elements (rather than arbitrary byte offsets) keeps each shard
// valid enough to gzip independently while the concatenated-member stream
// still gunzips back to the original bytes.
func splitPackageShards(data []byte, n int) [][]byte {
	var boundaries []int
	pos := 0
	for {
		idx := bytes.Index(data[pos:], []byte(packageCloseTag))
		if idx < 0 {
			break
		}
		pos += idx + len(packageCloseTag)
		boundaries = append(boundaries, pos)
	}
	if len(boundaries) == 0 {
		return [][]byte{data}
	}
	if boundaries[len(boundaries)-1] != len(data) {
		boundaries = append(boundaries, len(data))
	}

	perShard := (len(boundaries) + n - 1) / n
	if perShard == 0 {
		perShard = 1
	}
	var shards [][]byte
	start := 0
	for i := 0; i < len(boundaries); i += perShard {
		end := i + perShard
		if end > len(boundaries) {
			end = len(boundaries)
		}
		cut := boundaries[end-1]
		shards = append(shards, data[start:cut])
		start = cut
	}
	if start < len(data) {
		shards = append(shards, data[start:])
	}
	return shards
}

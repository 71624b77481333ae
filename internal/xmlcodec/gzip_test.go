package xmlcodec

import (
	"bytes"
	"strings"
	"testing"
)

func TestGzipCompressRoundTrip(t *testing.T) {
	data := []byte("<metadata>hello world</metadata>")
	compressed, err := GzipCompress(data)
	if err != nil {
		t.Fatalf("GzipCompress: %v", err)
	}
	out, err := GzipDecompress(compressed)
	if err != nil {
		t.Fatalf("GzipDecompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("round trip mismatch: got %q want %q", out, data)
	}
}

func buildPrimaryDocWithPackages(n int) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString("<metadata>\n")
	for i := 0; i < n; i++ {
		b.WriteString("<package><name>pkg</name></package>\n")
	}
	b.WriteString("</metadata>\n")
	return []byte(b.String())
}

func TestGzipCompressParallelMatchesSerial(t *testing.T) {
	data := buildPrimaryDocWithPackages(40)

	serial, err := GzipCompress(data)
	if err != nil {
		t.Fatalf("GzipCompress: %v", err)
	}
	parallel, err := GzipCompressParallel(data, 4)
	if err != nil {
		t.Fatalf("GzipCompressParallel: %v", err)
	}

	serialOut, err := GzipDecompress(serial)
	if err != nil {
		t.Fatalf("GzipDecompress(serial): %v", err)
	}
	parallelOut, err := GzipDecompress(parallel)
	if err != nil {
		t.Fatalf("GzipDecompress(parallel): %v", err)
	}
	if !bytes.Equal(serialOut, parallelOut) {
		t.Errorf("serial and parallel paths diverged after gunzip")
	}
	if !bytes.Equal(parallelOut, data) {
		t.Errorf("parallel path did not reproduce the original bytes")
	}
}

func TestGzipCompressParallelSingleWorkerFallsBackToSerial(t *testing.T) {
	data := buildPrimaryDocWithPackages(5)
	out, err := GzipCompressParallel(data, 1)
	if err != nil {
		t.Fatalf("GzipCompressParallel: %v", err)
	}
	decompressed, err := GzipDecompress(out)
	if err != nil {
		t.Fatalf("GzipDecompress: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Errorf("single-worker path did not reproduce the original bytes")
	}
}

func TestSplitPackageShardsReconstructsExactly(t *testing.T) {
	data := buildPrimaryDocWithPackages(10)
	shards := splitPackageShards(data, 3)
	if len(shards) == 0 {
		t.Fatalf("expected at least one shard")
	}
	var rebuilt []byte
	for _, s := range shards {
		rebuilt = append(rebuilt, s...)
	}
	if !bytes.Equal(rebuilt, data) {
		t.Errorf("shards did not reconstruct the original document")
	}
}

package flate

import (
	"bytes"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	kflate "github.com/klauspost/compress/flate"
	"github.com/pierrec/lz4/v4"

	"github.com/andybalholm/optflate"
)

// The benchmarks report the compression ratio along with the speed, to
// compare optimal parsing with other compressors on the same data.

func benchmarkData() []byte {
	return append(sampleText(1<<16, 30), randomBytes(1<<12, 31)...)
}

func benchmarkWriter(b *testing.B, w io.WriteCloser, reset func(io.Writer), buf *bytes.Buffer) {
	b.StopTimer()
	b.ReportAllocs()
	data := benchmarkData()
	b.SetBytes(int64(len(data)))
	w.Write(data)
	w.Close()
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		reset(io.Discard)
		w.Write(data)
		w.Close()
	}
}

func BenchmarkEncode(b *testing.B) {
	buf := new(bytes.Buffer)
	w := NewWriter(buf, optflate.DefaultOptions())
	benchmarkWriter(b, w, w.Reset, buf)
}

func BenchmarkEncodeFewIterations(b *testing.B) {
	opts := optflate.DefaultOptions()
	opts.NumIterations = 1
	buf := new(bytes.Buffer)
	w := NewWriter(buf, opts)
	benchmarkWriter(b, w, w.Reset, buf)
}

func BenchmarkEncodeKlauspostBest(b *testing.B) {
	buf := new(bytes.Buffer)
	w, err := kflate.NewWriter(buf, kflate.BestCompression)
	if err != nil {
		b.Fatal(err)
	}
	benchmarkWriter(b, w, w.Reset, buf)
}

func BenchmarkEncodeBrotli(b *testing.B) {
	buf := new(bytes.Buffer)
	w := brotli.NewWriterLevel(buf, brotli.BestCompression)
	benchmarkWriter(b, w, w.Reset, buf)
}

func BenchmarkEncodeGolangSnappy(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	data := benchmarkData()
	b.SetBytes(int64(len(data)))
	compressed := snappy.Encode(nil, data)
	b.ReportMetric(float64(len(data))/float64(len(compressed)), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		compressed = snappy.Encode(compressed[:cap(compressed)], data)
	}
}

func BenchmarkEncodeLZ4(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	data := benchmarkData()
	b.SetBytes(int64(len(data)))
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportMetric(float64(len(data))/float64(n), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		lz4.CompressBlock(data, dst, nil)
	}
}

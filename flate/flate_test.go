package flate

import (
	"bytes"
	stdflate "compress/flate"
	stdgzip "compress/gzip"
	stdzlib "compress/zlib"
	"errors"
	"io"
	"log"
	"math/rand"
	"strings"
	"testing"

	kflate "github.com/klauspost/compress/flate"
	kgzip "github.com/klauspost/compress/gzip"
	kzlib "github.com/klauspost/compress/zlib"
	"github.com/pierrec/xxHash/xxHash32"
	"github.com/stretchr/testify/require"

	"github.com/andybalholm/optflate"
)

var words = strings.Fields(`the of and to in is that for it as was with be by on not he this
	are or his from at which but have an they you were her she there been one all we their
	light colours rays glass prism experiment refraction white red blue green violet
	optick lens image sun reflected transmitted thickness plate bubble water air`)

// sampleText returns n bytes of text-like data.
func sampleText(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	var b bytes.Buffer
	for b.Len() < n {
		b.WriteString(words[r.Intn(len(words))])
		switch r.Intn(12) {
		case 0:
			b.WriteString(".\n")
		case 1:
			b.WriteString(", ")
		default:
			b.WriteByte(' ')
		}
	}
	return b.Bytes()[:n]
}

func randomBytes(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}

func testOptions() *optflate.Options {
	opts := optflate.DefaultOptions()
	opts.NumIterations = 5
	return opts
}

// inflate decompresses a raw DEFLATE stream with both the standard library
// and klauspost/compress, and checks that they agree.
func inflate(t testing.TB, compressed []byte) []byte {
	std, err := io.ReadAll(stdflate.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		t.Fatal(err)
	}
	k, err := io.ReadAll(kflate.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(std, k) {
		t.Fatal("decoders disagree")
	}
	return std
}

func TestRoundTrip(t *testing.T) {
	mixed := append(append(sampleText(15000, 1), randomBytes(5000, 2)...), sampleText(15000, 3)...)
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"one byte", []byte{'x'}},
		{"short", []byte("abc")},
		{"repeated byte", bytes.Repeat([]byte{'A'}, 300)},
		{"text", sampleText(30000, 4)},
		{"random", randomBytes(5000, 5)},
		{"mixed", mixed},
		{"zeros", make([]byte, 100000)},
		{"incompressible", randomBytes(70000, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := Compress(testOptions(), tt.data)
			decompressed := inflate(t, compressed)
			if !bytes.Equal(decompressed, tt.data) {
				t.Fatal("decompressed output doesn't match")
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	require.Equal(t, []byte{0x03, 0x00}, Compress(nil, nil))
	require.Empty(t, inflate(t, Compress(nil, []byte{})))
}

func TestSmallRandomBlockType(t *testing.T) {
	// A stored block of 50 bytes takes 440 bits. Literals from the upper
	// half of the alphabet take 9 bits each with the fixed codes, so a
	// buffer of only those is stored.
	r := rand.New(rand.NewSource(7))
	data := make([]byte, 50)
	for i := range data {
		data[i] = byte(144 + r.Intn(112))
	}
	compressed := Compress(optflate.DefaultOptions(), data)
	require.Equal(t, byte(1), compressed[0]&1, "final bit")
	require.Equal(t, byte(BlockStored), (compressed[0]>>1)&3, "block type")
	require.Len(t, compressed, 1+4+len(data))
	require.Equal(t, data, inflate(t, compressed))

	// Uniformly random bytes usually have few enough 9-bit literals that a
	// fixed block beats storing them.
	for seed := int64(0); seed < 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		r.Read(data)
		high := 0
		for _, b := range data {
			if b >= 144 {
				high++
			}
		}
		compressed := Compress(optflate.DefaultOptions(), data)
		require.LessOrEqual(t, len(compressed), 1+4+len(data), "seed %d", seed)
		require.Equal(t, data, inflate(t, compressed), "seed %d", seed)
		if 3+8*len(data)+high+7 < 440-10 {
			require.Equal(t, byte(BlockFixed), (compressed[0]>>1)&3, "seed %d: %d high bytes", seed, high)
		}
	}
}

func TestForcedBlockTypes(t *testing.T) {
	data := sampleText(20000, 8)
	for _, btype := range []int{BlockStored, BlockFixed, BlockDynamic} {
		w := NewBitWriter(nil)
		Deflate(testOptions(), btype, true, data, w)
		compressed := w.Bytes()
		if btype != BlockDynamic {
			require.Equal(t, byte(btype), (compressed[0]>>1)&3, "block type %d", btype)
		}
		require.Equal(t, data, inflate(t, compressed), "block type %d", btype)
	}
}

func TestMasterBlocks(t *testing.T) {
	data := randomBytes(masterBlockSize+100000, 9)
	w := NewBitWriter(nil)
	Deflate(nil, BlockStored, true, data, w)
	require.Equal(t, data, inflate(t, w.Bytes()))
}

func TestNonFinalStream(t *testing.T) {
	// Two calls to Deflate make one stream.
	a := sampleText(3000, 10)
	b := sampleText(3000, 11)
	w := NewBitWriter(nil)
	Deflate(testOptions(), BlockDynamic, false, a, w)
	Deflate(testOptions(), BlockDynamic, true, b, w)
	require.Equal(t, append(append([]byte(nil), a...), b...), inflate(t, w.Bytes()))
}

func TestGzip(t *testing.T) {
	data := sampleText(10000, 12)
	compressed := GzipCompress(testOptions(), data)

	sr, err := stdgzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	std, err := io.ReadAll(sr)
	require.NoError(t, err)
	require.Equal(t, data, std)
	require.True(t, sr.ModTime.IsZero() || sr.ModTime.Unix() == 0)

	kr, err := kgzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	k, err := io.ReadAll(kr)
	require.NoError(t, err)
	require.Equal(t, data, k)
}

func TestZlib(t *testing.T) {
	data := sampleText(10000, 13)
	compressed := ZlibCompress(testOptions(), data)
	require.Zero(t, (int(compressed[0])<<8|int(compressed[1]))%31, "header check bits")

	sr, err := stdzlib.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	std, err := io.ReadAll(sr)
	require.NoError(t, err)
	require.Equal(t, data, std)

	kr, err := kzlib.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	k, err := io.ReadAll(kr)
	require.NoError(t, err)
	require.Equal(t, data, k)
}

func TestWriter(t *testing.T) {
	data := sampleText(12000, 14)
	opts := testOptions()

	var buf bytes.Buffer
	w := NewWriter(&buf, opts)
	for i := 0; i < len(data); i += 1000 {
		_, err := w.Write(data[i:min(i+1000, len(data))])
		require.NoError(t, err)
	}
	require.Zero(t, buf.Len(), "nothing is written before Close")
	require.NoError(t, w.Close())
	require.Equal(t, Compress(opts, data), buf.Bytes())

	_, err := w.Write([]byte("more"))
	require.Error(t, err)

	buf.Reset()
	gw := NewGzipWriter(&buf, opts)
	gw.Write(data)
	require.NoError(t, gw.Close())
	require.Equal(t, GzipCompress(opts, data), buf.Bytes())

	buf.Reset()
	zw := NewZlibWriter(&buf, opts)
	zw.Write(data)
	require.NoError(t, zw.Close())
	require.Equal(t, ZlibCompress(opts, data), buf.Bytes())
}

type failingWriter struct{}

var errFail = errors.New("write failed")

func (failingWriter) Write(p []byte) (int, error) { return 0, errFail }

func TestWriterError(t *testing.T) {
	w := NewWriter(failingWriter{}, testOptions())
	w.Write([]byte("hello"))
	err := w.Close()
	require.ErrorIs(t, err, errFail)
}

func TestDeterministic(t *testing.T) {
	data := append(sampleText(8000, 15), randomBytes(2000, 16)...)
	fingerprint := func() uint32 {
		h := xxHash32.New(0)
		h.Write(Compress(testOptions(), data))
		return h.Sum32()
	}
	first := fingerprint()
	for i := 0; i < 3; i++ {
		require.Equal(t, first, fingerprint(), "run %d", i)
	}
}

func TestVerboseLogging(t *testing.T) {
	var buf bytes.Buffer
	opts := testOptions()
	opts.Verbose = true
	opts.Logger = log.New(&buf, "", 0)

	data := sampleText(5000, 17)
	require.Equal(t, data, inflate(t, Compress(opts, data)))
	require.Contains(t, buf.String(), "Original Size: 5000")
	require.Contains(t, buf.String(), "compressed block size")

	// Without Verbose, nothing is logged.
	buf.Reset()
	opts.Verbose = false
	Compress(opts, data)
	require.Zero(t, buf.Len())
}

func TestNumIterations(t *testing.T) {
	var buf bytes.Buffer
	opts := optflate.DefaultOptions()
	opts.VerboseMore = true
	opts.Logger = log.New(&buf, "", 0)
	data := sampleText(3000, 21)

	opts.NumIterations = 0
	require.Equal(t, data, inflate(t, Compress(opts, data)))
	require.Contains(t, buf.String(), "Fixed-cost parse")
	require.NotContains(t, buf.String(), "Iteration")

	buf.Reset()
	opts.NumIterations = -1
	require.Equal(t, data, inflate(t, Compress(opts, data)))
	require.Contains(t, buf.String(), "Iteration 14:")
	require.NotContains(t, buf.String(), "Iteration 15:")
}

func TestMoreIterationsNotWorse(t *testing.T) {
	data := sampleText(20000, 18)
	opts := optflate.DefaultOptions()
	opts.NumIterations = 1
	one := Compress(opts, data)
	opts.NumIterations = 15
	fifteen := Compress(opts, data)
	// The best parse is kept, so more iterations can only help the
	// estimate; allow a little slack for the real encoding.
	require.LessOrEqual(t, len(fifteen), len(one)+len(one)/100)
	require.Less(t, len(fifteen), len(data)/2)
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("hello, hello, hello world"))
	f.Add(bytes.Repeat([]byte("ab"), 400))
	f.Fuzz(func(t *testing.T, data []byte) {
		opts := optflate.DefaultOptions()
		opts.NumIterations = 2
		compressed := Compress(opts, data)
		if !bytes.Equal(inflate(t, compressed), data) {
			t.Fatal("decompressed output doesn't match")
		}
	})
}

package flate

import (
	"hash/adler32"

	"github.com/andybalholm/optflate"
)

// zlib header: CMF = deflate with a 32K window, FLG = maximum compression
// level plus the check bits that make the header a multiple of 31.
const (
	zlibCMF = 0x78
	zlibFLG = 0xda
)

// ZlibCompress returns data compressed in zlib format (RFC 1950).
func ZlibCompress(opts *optflate.Options, data []byte) []byte {
	w := NewBitWriter([]byte{zlibCMF, zlibFLG})
	Deflate(opts, BlockDynamic, true, data, w)
	checksum := adler32.Checksum(data)
	return append(w.Bytes(),
		byte(checksum>>24),
		byte(checksum>>16),
		byte(checksum>>8),
		byte(checksum),
	)
}

package flate

import (
	"hash/crc32"

	"github.com/andybalholm/optflate"
)

func appendUint32(dst []byte, n uint32) []byte {
	return append(dst,
		byte(n),
		byte(n>>8),
		byte(n>>16),
		byte(n>>24),
	)
}

func appendGzipHeader(dst []byte) []byte {
	return append(dst,
		0x1f, 0x8b, // magic number
		8,          // CM = flate
		0,          // FLG
		0, 0, 0, 0, // MTIME (none, so the output is reproducible)
		2,   // XFL = maximum compression
		255, // OS (unspecified)
	)
}

// GzipCompress returns data compressed in gzip format (RFC 1952).
func GzipCompress(opts *optflate.Options, data []byte) []byte {
	w := NewBitWriter(appendGzipHeader(nil))
	Deflate(opts, BlockDynamic, true, data, w)
	dst := w.Bytes()
	dst = appendUint32(dst, crc32.ChecksumIEEE(data))
	dst = appendUint32(dst, uint32(len(data)))
	return dst
}

package flate

import "math/bits"

// A BitWriter accumulates a DEFLATE bit stream in memory. Bits are packed
// starting at the least significant bit of each byte.
type BitWriter struct {
	dst   []byte
	bits  uint64
	nbits uint
}

// NewBitWriter returns a BitWriter that appends to dst.
func NewBitWriter(dst []byte) *BitWriter {
	return &BitWriter{dst: dst}
}

// writeBits writes the low n bits of value, least significant bit first.
func (w *BitWriter) writeBits(value uint32, n uint) {
	w.bits |= (uint64(value) & (1<<n - 1)) << w.nbits
	w.nbits += n
	for w.nbits >= 8 {
		w.dst = append(w.dst, byte(w.bits))
		w.bits >>= 8
		w.nbits -= 8
	}
}

// writeHuffman writes a Huffman code of the given length, most significant
// bit first.
func (w *BitWriter) writeHuffman(code uint32, length uint) {
	if length == 0 {
		return
	}
	w.writeBits(uint32(bits.Reverse16(uint16(code))>>(16-length)), length)
}

// alignByte pads the stream with zero bits up to the next byte boundary.
func (w *BitWriter) alignByte() {
	if w.nbits > 0 {
		w.dst = append(w.dst, byte(w.bits))
		w.bits = 0
		w.nbits = 0
	}
}

// writeBytes writes p as-is. The stream must be byte-aligned.
func (w *BitWriter) writeBytes(p []byte) {
	assert(w.nbits == 0, "unaligned byte write")
	w.dst = append(w.dst, p...)
}

// BitLen returns the number of bits written so far.
func (w *BitWriter) BitLen() int {
	return len(w.dst)*8 + int(w.nbits)
}

// Bytes returns the stream, with the last partial byte padded with zero
// bits. The result is only valid until the next write.
func (w *BitWriter) Bytes() []byte {
	if w.nbits > 0 {
		return append(w.dst, byte(w.bits))
	}
	return w.dst
}

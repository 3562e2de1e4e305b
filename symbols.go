package optflate

import "math/bits"

// Base values and extra bit counts from RFC 1951 section 3.2.5. The cost
// model and the block writer must agree on these exactly.

// lengthBase is the shortest length for length symbols 257-285.
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}

// lengthSymbolExtra is the number of extra bits for length symbols 257-285.
var lengthSymbolExtra = [29]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase is the smallest distance for distance symbols 0-29.
var distBase = [30]uint16{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

// distSymbolExtra is the number of extra bits for distance symbols 0-29.
var distSymbolExtra = [30]uint8{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

var (
	lengthSymbolLUT [MaxMatch + 1]uint16
	lengthExtraLUT  [MaxMatch + 1]uint8
)

func init() {
	for code := 0; code < 28; code++ {
		base := int(lengthBase[code])
		for l := base; l < base+1<<lengthSymbolExtra[code] && l <= MaxMatch; l++ {
			lengthSymbolLUT[l] = uint16(257 + code)
			lengthExtraLUT[l] = uint8(l - base)
		}
	}
	// 258 has its own symbol, even though 284 with 31 extra would reach it.
	lengthSymbolLUT[MaxMatch] = 285
	lengthExtraLUT[MaxMatch] = 0
}

// LengthSymbol returns the literal/length symbol (257-285) for a match length.
func LengthSymbol(length int) int {
	assert(length >= MinMatch && length <= MaxMatch, "length %d out of range", length)
	return int(lengthSymbolLUT[length])
}

// LengthExtraBits returns the number of extra bits that follow the symbol
// for a match length.
func LengthExtraBits(length int) int {
	return int(lengthSymbolExtra[LengthSymbol(length)-257])
}

// LengthExtraBitsValue returns the value of the extra bits for a match length.
func LengthExtraBitsValue(length int) int {
	assert(length >= MinMatch && length <= MaxMatch, "length %d out of range", length)
	return int(lengthExtraLUT[length])
}

// LengthSymbolExtraBits returns the number of extra bits of a length symbol.
func LengthSymbolExtraBits(symbol int) int {
	return int(lengthSymbolExtra[symbol-257])
}

// LengthFromSymbol reconstructs a match length from its symbol and the value
// of its extra bits.
func LengthFromSymbol(symbol, extra int) int {
	return int(lengthBase[symbol-257]) + extra
}

// DistSymbol returns the distance symbol (0-29) for a distance.
func DistSymbol(dist int) int {
	if dist < 5 {
		return dist - 1
	}
	l := bits.Len(uint(dist-1)) - 1
	r := ((dist - 1) >> (l - 1)) & 1
	return l*2 + r
}

// DistExtraBits returns the number of extra bits that follow the symbol
// for a distance.
func DistExtraBits(dist int) int {
	if dist < 5 {
		return 0
	}
	return bits.Len(uint(dist-1)) - 2
}

// DistExtraBitsValue returns the value of the extra bits for a distance.
func DistExtraBitsValue(dist int) int {
	if dist < 5 {
		return 0
	}
	l := bits.Len(uint(dist-1)) - 1
	return (dist - (1 + 1<<l)) & (1<<(l-1) - 1)
}

// DistSymbolExtraBits returns the number of extra bits of a distance symbol.
func DistSymbolExtraBits(symbol int) int {
	return int(distSymbolExtra[symbol])
}

// DistFromSymbol reconstructs a distance from its symbol and the value of
// its extra bits.
func DistFromSymbol(symbol, extra int) int {
	return int(distBase[symbol]) + extra
}

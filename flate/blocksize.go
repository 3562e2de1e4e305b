package flate

import "github.com/andybalholm/optflate"

// Block types.
const (
	BlockStored  = 0
	BlockFixed   = 1
	BlockDynamic = 2
)

// maxStoredBlock is the most data a stored block can hold.
const maxStoredBlock = 65535

var fixedLLLengths, fixedDLengths = fixedTree()

// fixedTree returns the code lengths of the fixed Huffman codes.
func fixedTree() (ll [optflate.NumLL]int, d [optflate.NumD]int) {
	for i := range ll {
		switch {
		case i < 144:
			ll[i] = 8
		case i < 256:
			ll[i] = 9
		case i < 280:
			ll[i] = 7
		default:
			ll[i] = 8
		}
	}
	for i := range d {
		d[i] = 5
	}
	return ll, d
}

// symbolSizeSmall adds up the encoded size of the commands one by one.
func symbolSizeSmall(llLengths, dLengths []int, store *optflate.Store, lstart, lend int) int {
	result := 0
	for i := lstart; i < lend; i++ {
		if store.Dists[i] == 0 {
			result += llLengths[store.Litlens[i]]
			continue
		}
		ls := store.LLSymbol(i)
		ds := store.DSymbol(i)
		result += llLengths[ls] + dLengths[ds]
		result += optflate.LengthSymbolExtraBits(ls) + optflate.DistSymbolExtraBits(ds)
	}
	return result + llLengths[256]
}

// symbolSizeGivenCounts computes the encoded size of the commands from their
// symbol histogram. Short ranges are counted directly.
func symbolSizeGivenCounts(llCounts, dCounts, llLengths, dLengths []int, store *optflate.Store, lstart, lend int) int {
	if lstart+optflate.NumLL*3 > lend {
		return symbolSizeSmall(llLengths, dLengths, store, lstart, lend)
	}
	result := 0
	for i := 0; i < 256; i++ {
		result += llLengths[i] * llCounts[i]
	}
	for i := 257; i < 286; i++ {
		result += llLengths[i] * llCounts[i]
		result += optflate.LengthSymbolExtraBits(i) * llCounts[i]
	}
	for i := 0; i < 30; i++ {
		result += dLengths[i] * dCounts[i]
		result += optflate.DistSymbolExtraBits(i) * dCounts[i]
	}
	return result + llLengths[256]
}

// symbolSize returns the encoded size of the commands, without the block
// header.
func symbolSize(llLengths, dLengths []int, store *optflate.Store, lstart, lend int) int {
	if lstart+optflate.NumLL*3 > lend {
		return symbolSizeSmall(llLengths, dLengths, store, lstart, lend)
	}
	ll, d := store.Histogram(lstart, lend)
	return symbolSizeGivenCounts(ll[:], d[:], llLengths, dLengths, store, lstart, lend)
}

// patchDistanceCodes makes sure at least two distance codes have a length.
// Some decoders (including old versions of zlib) reject a distance tree
// with fewer than two codes, even though the format allows it.
func patchDistanceCodes(dLengths []int) {
	numCodes := 0
	for i := 0; i < 30; i++ {
		if dLengths[i] != 0 {
			numCodes++
		}
		if numCodes >= 2 {
			return
		}
	}
	switch numCodes {
	case 0:
		dLengths[0] = 1
		dLengths[1] = 1
	case 1:
		if dLengths[0] != 0 {
			dLengths[1] = 1
		} else {
			dLengths[0] = 1
		}
	}
}

// tryOptimizeHuffmanForRLE checks whether smoothing the histograms for
// run-length coding gives a smaller block (header plus data), and if so
// replaces the code lengths. It returns the resulting size in bits.
func tryOptimizeHuffmanForRLE(store *optflate.Store, lstart, lend int, llCounts, dCounts, llLengths, dLengths []int) float64 {
	treeSize := calculateTreeSize(llLengths, dLengths)
	dataSize := symbolSizeGivenCounts(llCounts, dCounts, llLengths, dLengths, store, lstart, lend)

	var llCounts2 [optflate.NumLL]int
	var dCounts2 [optflate.NumD]int
	copy(llCounts2[:], llCounts)
	copy(dCounts2[:], dCounts)
	OptimizeHuffmanForRLE(llCounts2[:])
	OptimizeHuffmanForRLE(dCounts2[:])

	var llLengths2 [optflate.NumLL]int
	var dLengths2 [optflate.NumD]int
	LengthLimitedCodeLengths(llCounts2[:], maxCodeBits, llLengths2[:])
	LengthLimitedCodeLengths(dCounts2[:], maxCodeBits, dLengths2[:])
	patchDistanceCodes(dLengths2[:])

	treeSize2 := calculateTreeSize(llLengths2[:], dLengths2[:])
	// The data is still priced with the real counts.
	dataSize2 := symbolSizeGivenCounts(llCounts, dCounts, llLengths2[:], dLengths2[:], store, lstart, lend)

	if treeSize2+dataSize2 < treeSize+dataSize {
		copy(llLengths, llLengths2[:])
		copy(dLengths, dLengths2[:])
		return float64(treeSize2 + dataSize2)
	}
	return float64(treeSize + dataSize)
}

// dynamicLengths computes the code lengths of a dynamic block for commands
// lstart up to lend, and returns the size of the tree plus the data in bits.
func dynamicLengths(store *optflate.Store, lstart, lend int, llLengths, dLengths []int) float64 {
	ll, d := store.Histogram(lstart, lend)
	ll[256] = 1 // end of block
	LengthLimitedCodeLengths(ll[:], maxCodeBits, llLengths)
	LengthLimitedCodeLengths(d[:], maxCodeBits, dLengths)
	patchDistanceCodes(dLengths)
	return tryOptimizeHuffmanForRLE(store, lstart, lend, ll[:], d[:], llLengths, dLengths)
}

// BlockSize estimates the size in bits of a block of the given type holding
// commands lstart up to lend of store.
func BlockSize(store *optflate.Store, lstart, lend, btype int) float64 {
	if btype == BlockStored {
		length := store.ByteRange(lstart, lend)
		blocks := (length + maxStoredBlock - 1) / maxStoredBlock
		// Each block has 3 header bits, up to 7 bits of padding and 4 bytes
		// of length.
		return float64(blocks*5*8 + length*8)
	}

	result := 3.0 // block header
	if btype == BlockFixed {
		result += float64(symbolSize(fixedLLLengths[:], fixedDLengths[:], store, lstart, lend))
	} else {
		var llLengths [optflate.NumLL]int
		var dLengths [optflate.NumD]int
		result += dynamicLengths(store, lstart, lend, llLengths[:], dLengths[:])
	}
	return result
}

// DynamicBlockSize is the size estimate the optimal parser uses to compare
// its iterations.
func DynamicBlockSize(store *optflate.Store, lstart, lend int) float64 {
	return BlockSize(store, lstart, lend, BlockDynamic)
}

// BlockSizeAutoType estimates the size of the best type of block for
// commands lstart up to lend.
func BlockSizeAutoType(store *optflate.Store, lstart, lend int) float64 {
	stored := BlockSize(store, lstart, lend, BlockStored)
	// Large blocks hardly ever end up fixed, so don't spend time on them.
	fixed := stored
	if store.Len() <= 1000 {
		fixed = BlockSize(store, lstart, lend, BlockFixed)
	}
	dynamic := BlockSize(store, lstart, lend, BlockDynamic)
	return min(stored, fixed, dynamic)
}

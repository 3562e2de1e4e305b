// Package flate writes optimally compressed DEFLATE streams (RFC 1951),
// using the parsers of the optflate package, plus gzip and zlib framing.
package flate

import "github.com/andybalholm/optflate"

// masterBlockSize is how much input is compressed as an independent unit.
// Larger units give the block splitter more freedom, but use more memory.
const masterBlockSize = 1000000

// addNonCompressedBlock writes data[start:end] as stored blocks.
func addNonCompressedBlock(final bool, data []byte, start, end int, w *BitWriter) {
	pos := start
	for {
		blockSize := min(maxStoredBlock, end-pos)
		currentFinal := pos+blockSize >= end
		nlen := ^uint16(blockSize)

		w.writeBits(b2u(final && currentFinal), 1)
		w.writeBits(BlockStored, 2)
		w.alignByte()
		w.writeBytes([]byte{
			byte(blockSize), byte(blockSize >> 8),
			byte(nlen), byte(nlen >> 8),
		})
		w.writeBytes(data[pos : pos+blockSize])

		if currentFinal {
			break
		}
		pos += blockSize
	}
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// addLZ77Data writes the commands with the given codes. expectedSize, if
// not 0, is checked against the number of bytes the commands cover.
func addLZ77Data(store *optflate.Store, lstart, lend, expectedSize int, llSymbols []uint32, llLengths []int, dSymbols []uint32, dLengths []int, w *BitWriter) {
	n := 0
	for i := lstart; i < lend; i++ {
		dist := int(store.Dists[i])
		litlen := int(store.Litlens[i])
		if dist == 0 {
			assert(litlen < 256, "literal %d out of range", litlen)
			assert(llLengths[litlen] > 0, "no code for literal %d", litlen)
			w.writeHuffman(llSymbols[litlen], uint(llLengths[litlen]))
			n++
			continue
		}

		ls := store.LLSymbol(i)
		ds := store.DSymbol(i)
		assert(ls >= 257 && ls <= 285, "bad length symbol %d", ls)
		assert(llLengths[ls] > 0 && dLengths[ds] > 0, "no code for <%d,%d>", litlen, dist)
		w.writeHuffman(llSymbols[ls], uint(llLengths[ls]))
		w.writeBits(uint32(optflate.LengthExtraBitsValue(litlen)), uint(optflate.LengthExtraBits(litlen)))
		w.writeHuffman(dSymbols[ds], uint(dLengths[ds]))
		w.writeBits(uint32(optflate.DistExtraBitsValue(dist)), uint(optflate.DistExtraBits(dist)))
		n += litlen
	}
	assert(expectedSize == 0 || n == expectedSize, "block covers %d bytes, expected %d", n, expectedSize)
}

// addLZ77Block writes commands lstart up to lend as one block of type
// btype.
func addLZ77Block(opts *optflate.Options, btype int, final bool, store *optflate.Store, lstart, lend, expectedSize int, w *BitWriter) {
	if btype == BlockStored {
		length := store.ByteRange(lstart, lend)
		pos := 0
		if lstart != lend {
			pos = store.Pos[lstart]
		}
		addNonCompressedBlock(final, store.Data, pos, pos+length, w)
		return
	}

	w.writeBits(b2u(final), 1)
	w.writeBits(uint32(btype), 2)

	var llLengths [optflate.NumLL]int
	var dLengths [optflate.NumD]int
	if btype == BlockFixed {
		llLengths, dLengths = fixedLLLengths, fixedDLengths
	} else {
		assert(btype == BlockDynamic, "bad block type %d", btype)
		dynamicLengths(store, lstart, lend, llLengths[:], dLengths[:])
		treeStart := w.BitLen()
		addDynamicTree(llLengths[:], dLengths[:], w)
		if opts.Verbose {
			opts.Logf("treesize: %d", w.BitLen()-treeStart)
		}
	}

	var llSymbols [optflate.NumLL]uint32
	var dSymbols [optflate.NumD]uint32
	LengthsToSymbols(llLengths[:], maxCodeBits, llSymbols[:])
	LengthsToSymbols(dLengths[:], maxCodeBits, dSymbols[:])

	dataStart := w.BitLen()
	addLZ77Data(store, lstart, lend, expectedSize, llSymbols[:], llLengths[:], dSymbols[:], dLengths[:], w)
	// End of block.
	w.writeHuffman(llSymbols[256], uint(llLengths[256]))

	if opts.Verbose {
		uncompressed := store.ByteRange(lstart, lend)
		compressed := (w.BitLen() - dataStart + 7) / 8
		opts.Logf("compressed block size: %d (%dk) (unc: %d)", compressed, compressed/1024, uncompressed)
	}
}

// addLZ77BlockAutoType writes commands lstart up to lend as whichever type
// of block comes out smallest.
func addLZ77BlockAutoType(opts *optflate.Options, final bool, store *optflate.Store, lstart, lend, expectedSize int, w *BitWriter) {
	if lstart == lend {
		// The smallest empty block is a fixed one with just the end code.
		w.writeBits(b2u(final), 1)
		w.writeBits(BlockFixed, 2)
		w.writeBits(0, 7)
		return
	}

	storedCost := BlockSize(store, lstart, lend, BlockStored)
	fixedCost := BlockSize(store, lstart, lend, BlockFixed)
	dynCost := BlockSize(store, lstart, lend, BlockDynamic)

	// A parse made for the fixed codes can be quite a bit smaller than
	// the one made for dynamic codes. Only try it when the block is small
	// or fixed codes are already close.
	expensiveFixed := store.Len() < 1000 || fixedCost <= dynCost*1.1

	var fixedStore *optflate.Store
	if expensiveFixed {
		start := store.Pos[lstart]
		end := start + store.ByteRange(lstart, lend)
		s := optflate.NewBlockState(opts, start, end, true)
		fixedStore = s.OptimalFixed(store.Data, start, end)
		fixedCost = BlockSize(fixedStore, 0, fixedStore.Len(), BlockFixed)
	}

	switch {
	case storedCost < fixedCost && storedCost < dynCost:
		addLZ77Block(opts, BlockStored, final, store, lstart, lend, expectedSize, w)
	case fixedCost < dynCost:
		if expensiveFixed {
			addLZ77Block(opts, BlockFixed, final, fixedStore, 0, fixedStore.Len(), expectedSize, w)
		} else {
			addLZ77Block(opts, BlockFixed, final, store, lstart, lend, expectedSize, w)
		}
	default:
		addLZ77Block(opts, BlockDynamic, final, store, lstart, lend, expectedSize, w)
	}
}

// totalCost adds up the estimated sizes of the blocks that splitPoints
// divides store into.
func totalCost(store *optflate.Store, splitPoints []int) float64 {
	cost := 0.0
	for i := 0; i <= len(splitPoints); i++ {
		start, end := blockBounds(splitPoints, i, store.Len())
		cost += BlockSizeAutoType(store, start, end)
	}
	return cost
}

// blockBounds returns the range of block i of a sequence of size n divided
// at splitPoints.
func blockBounds(splitPoints []int, i, n int) (start, end int) {
	if i > 0 {
		start = splitPoints[i-1]
	}
	end = n
	if i < len(splitPoints) {
		end = splitPoints[i]
	}
	return start, end
}

// deflatePart compresses data[start:end] as one or more blocks. Bytes
// before start (up to a window) may be referenced.
func deflatePart(opts *optflate.Options, btype int, final bool, data []byte, start, end int, w *BitWriter) {
	switch btype {
	case BlockStored:
		addNonCompressedBlock(final, data, start, end, w)
		return
	case BlockFixed:
		s := optflate.NewBlockState(opts, start, end, true)
		store := s.OptimalFixed(data, start, end)
		addLZ77Block(opts, btype, final, store, 0, store.Len(), 0, w)
		return
	}

	var inputSplits []int
	if opts.BlockSplitting {
		inputSplits = Split(opts, data, start, end, opts.BlockSplittingMax)
	}

	// Parse each block optimally, and collect the results in one store.
	lz77 := optflate.NewStore(data)
	splitPoints := make([]int, len(inputSplits))
	cost := 0.0
	for i := 0; i <= len(inputSplits); i++ {
		bstart, bend := blockBounds(inputSplits, i, end)
		if i == 0 {
			bstart = start
		}
		s := optflate.NewBlockState(opts, bstart, bend, true)
		store := s.Optimal(data, bstart, bend, DynamicBlockSize)
		cost += BlockSizeAutoType(store, 0, store.Len())
		lz77.AppendStore(store)
		if i < len(inputSplits) {
			splitPoints[i] = lz77.Len()
		}
	}

	// The optimal parse may be split better than the greedy one was.
	if opts.BlockSplitting && len(inputSplits) > 1 {
		splitPoints2 := SplitLZ77(opts, lz77, opts.BlockSplittingMax)
		if totalCost(lz77, splitPoints2) < cost {
			splitPoints = splitPoints2
		}
	}

	for i := 0; i <= len(splitPoints); i++ {
		bstart, bend := blockBounds(splitPoints, i, lz77.Len())
		addLZ77BlockAutoType(opts, i == len(splitPoints) && final, lz77, bstart, bend, 0, w)
	}
}

// withDefaults fills in the fields of opts that ask for the default.
func withDefaults(opts *optflate.Options) *optflate.Options {
	if opts == nil {
		return optflate.DefaultOptions()
	}
	if opts.NumIterations >= 0 {
		return opts
	}
	o := *opts
	o.NumIterations = optflate.DefaultOptions().NumIterations
	return &o
}

// Deflate compresses data and writes it to w as DEFLATE blocks of type
// btype (BlockStored, BlockFixed, or BlockDynamic, which chooses the best
// type for each block). If final is true, the last block is marked as the
// end of the stream.
//
// The input is processed in units of a million bytes, each split into
// blocks and parsed independently.
func Deflate(opts *optflate.Options, btype int, final bool, data []byte, w *BitWriter) {
	opts = withDefaults(opts)
	startBits := w.BitLen()

	i := 0
	for {
		masterFinal := i+masterBlockSize >= len(data)
		size := masterBlockSize
		if masterFinal {
			size = len(data) - i
		}
		deflatePart(opts, btype, final && masterFinal, data, i, i+size, w)
		i += size
		if i >= len(data) {
			break
		}
	}

	if opts.Verbose {
		outSize := (w.BitLen() - startBits + 7) / 8
		removed := 0.0
		if len(data) > 0 {
			removed = 100 * float64(len(data)-outSize) / float64(len(data))
		}
		opts.Logf("Original Size: %d, Deflate: %d, Compression: %f%% Removed", len(data), outSize, removed)
	}
}

// Compress returns data compressed as a complete DEFLATE stream. If opts is
// nil, the default options are used.
func Compress(opts *optflate.Options, data []byte) []byte {
	w := NewBitWriter(nil)
	Deflate(opts, BlockDynamic, true, data, w)
	return w.Bytes()
}

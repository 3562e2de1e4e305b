package flate

// clOrder is the order in which the code length code lengths are written.
var clOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// encodeTree writes the code lengths of a dynamic block header, and returns
// the size of the header in bits. If w is nil, nothing is written. The use
// flags say which of the run-length symbols 16 (repeat the previous length),
// 17 and 18 (runs of zeros) may be used.
func encodeTree(llLengths, dLengths []int, use16, use17, use18 bool, w *BitWriter) int {
	hlit := 29  // 286 - 257
	hdist := 29 // 32 - 1, but some decoders reject more than 30 distance codes

	var clCounts [19]int
	var rle []int
	var rleBits []uint32
	sizeOnly := w == nil

	// Trim trailing zeros.
	for hlit > 0 && llLengths[257+hlit-1] == 0 {
		hlit--
	}
	for hdist > 0 && dLengths[1+hdist-1] == 0 {
		hdist--
	}
	hlit2 := hlit + 257
	total := hlit2 + hdist + 1

	lengthAt := func(i int) int {
		if i < hlit2 {
			return llLengths[i]
		}
		return dLengths[i-hlit2]
	}

	emit := func(symbol int, extra int) {
		if !sizeOnly {
			rle = append(rle, symbol)
			rleBits = append(rleBits, uint32(extra))
		}
	}

	for i := 0; i < total; i++ {
		symbol := lengthAt(i)
		count := 1
		if use16 || (symbol == 0 && (use17 || use18)) {
			for j := i + 1; j < total && symbol == lengthAt(j); j++ {
				count++
			}
		}
		i += count - 1

		// Runs of zeros.
		if symbol == 0 && count >= 3 {
			if use18 {
				for count >= 11 {
					n := min(count, 138)
					emit(18, n-11)
					clCounts[18]++
					count -= n
				}
			}
			if use17 {
				for count >= 3 {
					n := min(count, 10)
					emit(17, n-3)
					clCounts[17]++
					count -= n
				}
			}
		}

		// Repetitions of any length; the first one is written as is.
		if use16 && count >= 4 {
			count--
			clCounts[symbol]++
			emit(symbol, 0)
			for count >= 3 {
				n := min(count, 6)
				emit(16, n-3)
				clCounts[16]++
				count -= n
			}
		}

		// Whatever is left is written literally.
		clCounts[symbol] += count
		for ; count > 0; count-- {
			emit(symbol, 0)
		}
	}

	var clcl [19]int
	LengthLimitedCodeLengths(clCounts[:], 7, clcl[:])

	hclen := 15
	// Trim zeros at the end of the code length code lengths.
	for hclen > 0 && clCounts[clOrder[hclen+4-1]] == 0 {
		hclen--
	}

	if !sizeOnly {
		var clSymbols [19]uint32
		LengthsToSymbols(clcl[:], 7, clSymbols[:])

		w.writeBits(uint32(hlit), 5)
		w.writeBits(uint32(hdist), 5)
		w.writeBits(uint32(hclen), 4)
		for i := 0; i < hclen+4; i++ {
			w.writeBits(uint32(clcl[clOrder[i]]), 3)
		}
		for i, s := range rle {
			w.writeHuffman(clSymbols[s], uint(clcl[s]))
			switch s {
			case 16:
				w.writeBits(rleBits[i], 2)
			case 17:
				w.writeBits(rleBits[i], 3)
			case 18:
				w.writeBits(rleBits[i], 7)
			}
		}
	}

	size := 14              // hlit, hdist, hclen
	size += (hclen + 4) * 3 // code length code lengths
	for i := range clcl {
		size += clcl[i] * clCounts[i]
	}
	size += clCounts[16]*2 + clCounts[17]*3 + clCounts[18]*7
	return size
}

// bestTreeFlags returns the combination of run-length symbols that gives
// the smallest dynamic header, and its size in bits.
func bestTreeFlags(llLengths, dLengths []int) (best int, size int) {
	for i := 0; i < 8; i++ {
		s := encodeTree(llLengths, dLengths, i&1 != 0, i&2 != 0, i&4 != 0, nil)
		if size == 0 || s < size {
			size = s
			best = i
		}
	}
	return best, size
}

// addDynamicTree writes the smallest encoding of a dynamic block header.
func addDynamicTree(llLengths, dLengths []int, w *BitWriter) {
	best, _ := bestTreeFlags(llLengths, dLengths)
	encodeTree(llLengths, dLengths, best&1 != 0, best&2 != 0, best&4 != 0, w)
}

// calculateTreeSize returns the size in bits of the smallest encoding of a
// dynamic block header.
func calculateTreeSize(llLengths, dLengths []int) int {
	_, size := bestTreeFlags(llLengths, dLengths)
	return size
}

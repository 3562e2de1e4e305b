package flate

func absDiff(x, y int) int {
	if x > y {
		return x - y
	}
	return y - x
}

// OptimizeHuffmanForRLE changes the symbol counts in counts slightly so that
// the resulting code lengths compress better with the run-length symbols of
// the code length alphabet (16, 17 and 18). Strides of similar counts are
// replaced with their average. A count that is not zero never becomes zero,
// so every symbol in use keeps a code.
func OptimizeHuffmanForRLE(counts []int) {
	length := len(counts)
	// Trailing zeros are not written at all.
	for ; length > 0; length-- {
		if counts[length-1] != 0 {
			break
		}
	}
	if length == 0 {
		return
	}

	// Mark runs that are already good for RLE coding, so they are left
	// alone.
	goodForRLE := make([]bool, length)
	symbol := counts[0]
	stride := 0
	for i := 0; i <= length; i++ {
		if i == length || counts[i] != symbol {
			if (symbol == 0 && stride >= 5) || (symbol != 0 && stride >= 7) {
				for k := 0; k < stride; k++ {
					goodForRLE[i-k-1] = true
				}
			}
			stride = 1
			if i != length {
				symbol = counts[i]
			}
		} else {
			stride++
		}
	}

	stride = 0
	limit := counts[0]
	sum := 0
	for i := 0; i <= length; i++ {
		if i == length || goodForRLE[i] || absDiff(counts[i], limit) >= 4 {
			// End of a stride of similar counts.
			if stride >= 4 || (stride >= 3 && sum == 0) {
				count := (sum + stride/2) / stride
				if count < 1 {
					count = 1
				}
				if sum == 0 {
					count = 0
				}
				for k := 0; k < stride; k++ {
					counts[i-k-1] = count
				}
			}
			stride = 0
			sum = 0
			switch {
			case i < length-3:
				limit = (counts[i] + counts[i+1] + counts[i+2] + counts[i+3] + 2) / 4
			case i < length:
				limit = counts[i]
			default:
				limit = 0
			}
		}
		stride++
		if i != length {
			sum += counts[i]
		}
	}
}

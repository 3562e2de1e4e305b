package flate

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// huffmanCost returns the total encoded size of an unrestricted Huffman
// code for freqs: the sum of the weights of all the internal nodes.
func huffmanCost(freqs []int) int {
	var w []int
	for _, f := range freqs {
		if f > 0 {
			w = append(w, f)
		}
	}
	if len(w) < 2 {
		return 0
	}
	cost := 0
	for len(w) > 1 {
		slices.Sort(w)
		sum := w[0] + w[1]
		cost += sum
		w = append(w[2:], sum)
	}
	return cost
}

func checkPrefixCode(t *testing.T, lengths []int) {
	symbols := make([]uint32, len(lengths))
	LengthsToSymbols(lengths, maxCodeBits, symbols)
	for i := range lengths {
		for j := range lengths {
			if i == j || lengths[i] == 0 || lengths[j] == 0 || lengths[i] > lengths[j] {
				continue
			}
			// Code i must not be a prefix of code j.
			prefix := symbols[j] >> uint(lengths[j]-lengths[i])
			require.False(t, prefix == symbols[i], "code %d is a prefix of code %d", i, j)
		}
	}
}

func TestLengthLimitedCodeLengths(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for n := 0; n < 200; n++ {
		numSymbols := 1 + r.Intn(288)
		maxBits := []int{15, 9, 7}[r.Intn(3)]
		freqs := make([]int, numSymbols)
		used := 0
		for i := range freqs {
			if r.Intn(3) != 0 {
				freqs[i] = 1 + r.Intn(1000)
				if r.Intn(10) == 0 {
					freqs[i] *= 1000
				}
				used++
			}
		}
		if used > 1<<maxBits {
			continue
		}

		lengths := make([]int, numSymbols)
		LengthLimitedCodeLengths(freqs, maxBits, lengths)

		kraft := 0.0
		for i, l := range lengths {
			if freqs[i] == 0 {
				require.Zero(t, l, "unused symbol %d", i)
				continue
			}
			require.True(t, l >= 1 && l <= maxBits, "symbol %d: length %d", i, l)
			kraft += 1 / float64(int(1)<<l)
		}
		require.LessOrEqual(t, kraft, 1.0)
		if used > 1 {
			require.InDelta(t, 1.0, kraft, 1e-12, "code should be complete")
		}
		checkPrefixCode(t, lengths)

		// A length limit can only make the code worse.
		cost := 0
		for i, l := range lengths {
			cost += freqs[i] * l
		}
		require.GreaterOrEqual(t, cost, huffmanCost(freqs))
	}
}

func TestLengthLimitedOptimal(t *testing.T) {
	// With frequencies this even, the unrestricted Huffman code is never
	// deeper than 15 bits, so package-merge must match it.
	r := rand.New(rand.NewSource(3))
	for n := 0; n < 100; n++ {
		freqs := make([]int, 2+r.Intn(63))
		for i := range freqs {
			freqs[i] = 100 + r.Intn(900)
		}
		lengths := make([]int, len(freqs))
		LengthLimitedCodeLengths(freqs, maxCodeBits, lengths)
		cost := 0
		for i, l := range lengths {
			cost += freqs[i] * l
		}
		require.Equal(t, huffmanCost(freqs), cost)
	}
}

func TestLengthLimitedSmall(t *testing.T) {
	lengths := make([]int, 4)

	LengthLimitedCodeLengths([]int{0, 0, 0, 0}, 15, lengths)
	require.Equal(t, []int{0, 0, 0, 0}, lengths)

	LengthLimitedCodeLengths([]int{0, 7, 0, 0}, 15, lengths)
	require.Equal(t, []int{0, 1, 0, 0}, lengths)

	LengthLimitedCodeLengths([]int{3, 0, 0, 9}, 15, lengths)
	require.Equal(t, []int{1, 0, 0, 1}, lengths)

	LengthLimitedCodeLengths([]int{1, 2, 4, 8}, 15, lengths)
	require.Equal(t, []int{3, 3, 2, 1}, lengths)

	// The limit forces a balanced code.
	LengthLimitedCodeLengths([]int{1, 2, 4, 8}, 2, lengths)
	require.Equal(t, []int{2, 2, 2, 2}, lengths)

	require.Panics(t, func() {
		LengthLimitedCodeLengths([]int{1, 1, 1, 1, 1}, 2, make([]int, 5))
	})
}

func TestLengthLimitedLongCodes(t *testing.T) {
	// Fibonacci weights give an unrestricted code 24 bits deep.
	freqs := make([]int, 25)
	freqs[0], freqs[1] = 1, 1
	for i := 2; i < len(freqs); i++ {
		freqs[i] = freqs[i-1] + freqs[i-2]
	}
	for _, maxBits := range []int{15, 16, 20, 24, 40} {
		lengths := make([]int, len(freqs))
		LengthLimitedCodeLengths(freqs, maxBits, lengths)

		kraft := 0
		cost := 0
		for i, l := range lengths {
			require.True(t, l >= 1 && l <= maxBits, "maxBits %d: symbol %d has length %d", maxBits, i, l)
			kraft += 1 << (32 - l)
			cost += freqs[i] * l
		}
		require.Equal(t, 1<<32, kraft, "maxBits %d", maxBits)
		require.GreaterOrEqual(t, cost, huffmanCost(freqs))
		if maxBits >= 24 {
			require.Equal(t, huffmanCost(freqs), cost, "maxBits %d", maxBits)
		}
	}
}

func TestLengthsToSymbols(t *testing.T) {
	// The example from RFC 1951 section 3.2.2.
	lengths := []int{3, 3, 3, 3, 3, 2, 4, 4}
	symbols := make([]uint32, len(lengths))
	LengthsToSymbols(lengths, maxCodeBits, symbols)
	require.Equal(t, []uint32{2, 3, 4, 5, 6, 0, 14, 15}, symbols)
}

func TestOptimizeHuffmanForRLE(t *testing.T) {
	counts := []int{5, 6, 5, 6, 5, 6, 5}
	OptimizeHuffmanForRLE(counts)
	require.Equal(t, []int{5, 5, 5, 5, 5, 5, 5}, counts)

	counts = []int{1, 0, 0, 0, 1, 0, 0, 0}
	OptimizeHuffmanForRLE(counts)
	require.Equal(t, []int{1, 1, 1, 1, 1, 0, 0, 0}, counts)

	// Runs that are already good for RLE are left alone.
	counts = []int{9, 9, 9, 9, 9, 9, 9, 100}
	OptimizeHuffmanForRLE(counts)
	require.Equal(t, []int{9, 9, 9, 9, 9, 9, 9, 100}, counts)

	r := rand.New(rand.NewSource(2))
	for n := 0; n < 100; n++ {
		orig := make([]int, 288)
		for i := range orig {
			if r.Intn(4) == 0 {
				orig[i] = r.Intn(50)
			}
		}
		counts := slices.Clone(orig)
		OptimizeHuffmanForRLE(counts)
		last := -1
		for i, c := range orig {
			if c != 0 {
				last = i
			}
		}
		for i := range counts {
			if orig[i] != 0 {
				require.NotZero(t, counts[i], "used symbol %d became unused", i)
			}
			if i > last {
				require.Zero(t, counts[i], "trailing symbol %d", i)
			}
		}
	}
}

func TestFindMinimum(t *testing.T) {
	// For 1234 and 7777 the last round of samples misses the minimum, so
	// the narrowed range has to be scanned.
	for _, c := range []int{5, 1234, 3000, 7777} {
		f := func(i int) float64 { return float64((i - c) * (i - c)) }
		pos, v := findMinimum(f, 0, 10000)
		require.Equal(t, c, pos)
		require.Equal(t, 0.0, v)
	}
	pos, v := findMinimum(func(i int) float64 { return float64(100 - i) }, 10, 20)
	require.Equal(t, 19, pos)
	require.Equal(t, 81.0, v)
}

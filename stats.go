package optflate

import "math"

// SymbolStats holds symbol frequencies and the bit costs derived from them.
type SymbolStats struct {
	Litlens [NumLL]int
	Dists   [NumD]int

	// LLSymbols and DSymbols are the entropy-based costs, in bits, of each
	// literal/length and distance symbol.
	LLSymbols [NumLL]float64
	DSymbols  [NumD]float64
}

// Entropy sets bitlengths[i] to the ideal code length, in bits, of a symbol
// that occurs counts[i] times. Symbols that don't occur get the cost of the
// whole alphabet.
func Entropy(counts []int, bitlengths []float64) {
	sum := 0
	for _, c := range counts {
		sum += c
	}
	var log2sum float64
	if sum == 0 {
		log2sum = math.Log2(float64(len(counts)))
	} else {
		log2sum = math.Log2(float64(sum))
	}

	for i, c := range counts {
		if c == 0 {
			bitlengths[i] = log2sum
		} else {
			bitlengths[i] = log2sum - math.Log2(float64(c))
		}
		// Rounding can leave tiny negative values.
		if bitlengths[i] < 0 && bitlengths[i] > -1e-5 {
			bitlengths[i] = 0
		}
		assert(bitlengths[i] >= 0, "negative entropy %v", bitlengths[i])
	}
}

// Calculate fills in the symbol costs from the frequencies.
func (st *SymbolStats) Calculate() {
	Entropy(st.Litlens[:], st.LLSymbols[:])
	Entropy(st.Dists[:], st.DSymbols[:])
}

func (st *SymbolStats) clearFreqs() {
	st.Litlens = [NumLL]int{}
	st.Dists = [NumD]int{}
}

// FromStore sets the frequencies to the symbol counts of store, plus one
// end-of-block symbol, and calculates the costs.
func (st *SymbolStats) FromStore(store *Store) {
	st.clearFreqs()
	for i := range store.Litlens {
		if store.Dists[i] == 0 {
			st.Litlens[store.Litlens[i]]++
		} else {
			st.Litlens[LengthSymbol(int(store.Litlens[i]))]++
			st.Dists[DistSymbol(int(store.Dists[i]))]++
		}
	}
	st.Litlens[256] = 1
	st.Calculate()
}

// addWeighted returns the frequencies of a weighted by w1 plus those of b
// weighted by w2. The costs are not calculated.
func addWeighted(a *SymbolStats, w1 float64, b *SymbolStats, w2 float64) SymbolStats {
	var r SymbolStats
	for i := range r.Litlens {
		r.Litlens[i] = int(float64(a.Litlens[i])*w1 + float64(b.Litlens[i])*w2)
	}
	for i := range r.Dists {
		r.Dists[i] = int(float64(a.Dists[i])*w1 + float64(b.Dists[i])*w2)
	}
	r.Litlens[256] = 1
	return r
}

// ranState is a multiply-with-carry random number generator. A fixed seed
// keeps the output of the compressor deterministic.
type ranState struct {
	mw, mz uint32
}

func newRanState() ranState {
	return ranState{mw: 1, mz: 2}
}

func (r *ranState) next() uint32 {
	r.mz = 36969*(r.mz&65535) + (r.mz >> 16)
	r.mw = 18000*(r.mw&65535) + (r.mw >> 16)
	return (r.mz << 16) + r.mw
}

func randomizeFreqs(r *ranState, freqs []int) {
	n := uint32(len(freqs))
	for i := range freqs {
		if (r.next()>>4)%3 == 0 {
			freqs[i] = freqs[r.next()%n]
		}
	}
}

// randomize shuffles some of the frequencies around, to get the optimal
// parser out of a local minimum.
func (st *SymbolStats) randomize(r *ranState) {
	randomizeFreqs(r, st.Litlens[:])
	randomizeFreqs(r, st.Dists[:])
	st.Litlens[256] = 1
}

package optflate

// A CostModel estimates how many bits it takes to encode a command. For a
// literal, dist is 0 and litlen is the byte value.
type CostModel interface {
	Cost(litlen, dist int) float64
}

// FixedCost is the cost of commands with the fixed Huffman codes of
// RFC 1951 section 3.2.6.
type FixedCost struct{}

func (FixedCost) Cost(litlen, dist int) float64 {
	if dist == 0 {
		if litlen <= 143 {
			return 8
		}
		return 9
	}
	cost := LengthExtraBits(litlen) + DistExtraBits(dist)
	if LengthSymbol(litlen) <= 279 {
		cost += 7
	} else {
		cost += 8
	}
	// Every distance code is 5 bits.
	cost += 5
	return float64(cost)
}

// Cost estimates the cost of a command from the symbol entropies in st.
func (st *SymbolStats) Cost(litlen, dist int) float64 {
	if dist == 0 {
		return st.LLSymbols[litlen]
	}
	lsym := LengthSymbol(litlen)
	dsym := DistSymbol(dist)
	extra := LengthExtraBits(litlen) + DistExtraBits(dist)
	return float64(extra) + st.LLSymbols[lsym] + st.DSymbols[dsym]
}

// minCost returns the cost of the cheapest possible match under m: the
// cheapest length at distance 1 combined with the cheapest distance for a
// length of 3. Since the length and distance costs are independent, no
// match can cost less.
func minCost(m CostModel) float64 {
	bestLength := 0
	best := largeFloat
	for l := MinMatch; l <= MaxMatch; l++ {
		if c := m.Cost(l, 1); c < best {
			bestLength = l
			best = c
		}
	}

	bestDist := 0
	best = largeFloat
	for _, d := range distBase {
		if c := m.Cost(MinMatch, int(d)); c < best {
			bestDist = int(d)
			best = c
		}
	}

	return m.Cost(bestLength, bestDist)
}

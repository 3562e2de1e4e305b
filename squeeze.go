package optflate

import "slices"

// A BlockSizer estimates the size in bits of a compressed block holding
// commands lstart up to lend of store. The optimal parser uses it to judge
// which iteration produced the best parse.
type BlockSizer func(store *Store, lstart, lend int) float64

// bestLengths runs the shortest path search over data[start:end] with the
// given cost model. On return, lengthArray[j] holds the length of the last
// step (1 for a literal) of the cheapest way to encode the first j bytes.
// It returns the cost of the whole range.
func (s *BlockState) bestLengths(data []byte, start, end int, model CostModel, lengthArray []uint16, h *HashChain, costs []float32) float64 {
	if start == end {
		return 0
	}
	blockSize := end - start
	resetHash(h, data, start, end)

	costs[0] = 0
	lengthArray[0] = 0
	for i := 1; i <= blockSize; i++ {
		costs[i] = largeFloat
	}

	var sublen [MaxMatch + 1]uint16
	mincost := minCost(model)

	for i := start; i < end; i++ {
		j := i - start
		h.Update(data, i, end)

		// In a long run of identical bytes, the best choice is clear: keep
		// taking maximum-length matches at distance 1.
		if int(h.same[i&windowMask]) > MaxMatch*2 &&
			i > start+MaxMatch+1 &&
			i+MaxMatch*2+1 < end &&
			int(h.same[(i-MaxMatch)&windowMask]) > MaxMatch {
			symbolCost := float32(model.Cost(MaxMatch, 1))
			for k := 0; k < MaxMatch; k++ {
				costs[j+MaxMatch] = costs[j] + symbolCost
				lengthArray[j+MaxMatch] = MaxMatch
				i++
				j++
				h.Update(data, i, end)
			}
		}

		length, _ := s.FindLongestMatch(h, data, i, end, MaxMatch, sublen[:])

		// Literal.
		if i+1 <= end {
			newCost := model.Cost(int(data[i]), 0) + float64(costs[j])
			assert(newCost >= 0, "negative cost at %d", i)
			if newCost < float64(costs[j+1]) {
				costs[j+1] = float32(newCost)
				lengthArray[j+1] = 1
			}
		}

		// Matches.
		kend := min(length, end-i)
		minCostHere := mincost + float64(costs[j])
		for k := MinMatch; k <= kend; k++ {
			// Even the cheapest match can't improve this one.
			if float64(costs[j+k]) <= minCostHere {
				continue
			}
			newCost := model.Cost(k, int(sublen[k])) + float64(costs[j])
			assert(newCost >= 0, "negative cost at %d", i)
			if newCost < float64(costs[j+k]) {
				costs[j+k] = float32(newCost)
				lengthArray[j+k] = uint16(k)
			}
		}
	}

	assert(costs[blockSize] >= 0, "negative total cost")
	return float64(costs[blockSize])
}

// traceBackwards turns the result of bestLengths into the sequence of step
// lengths from the start of the block.
func traceBackwards(size int, lengthArray []uint16) []uint16 {
	if size == 0 {
		return nil
	}
	var path []uint16
	for index := size; index > 0; {
		l := int(lengthArray[index])
		assert(l != 0 && l <= index && l <= MaxMatch, "broken path at %d", index)
		path = append(path, uint16(l))
		index -= l
	}
	slices.Reverse(path)
	return path
}

// followPath adds the commands of path to store, finding a distance for
// each match.
func (s *BlockState) followPath(data []byte, start, end int, path []uint16, store *Store, h *HashChain) {
	if start == end {
		return
	}
	resetHash(h, data, start, end)

	pos := start
	for _, l := range path {
		length := int(l)
		assert(pos < end, "path runs past the end")

		h.Update(data, pos, end)

		if length >= MinMatch {
			found, dist := s.FindLongestMatch(h, data, pos, end, length, nil)
			assert(!(found != length && length > 2 && found > 2), "path length %d, found %d at %d", length, found, pos)
			if debugAsserts {
				verifyLenDist(data, end, pos, dist, length)
			}
			store.Add(length, dist, pos)
		} else {
			length = 1
			store.Add(int(data[pos]), 0, pos)
		}

		assert(pos+length <= end, "path runs past the end")
		for j := 1; j < length; j++ {
			h.Update(data, pos+j, end)
		}
		pos += length
	}
}

// optimalRun does one shortest path parse of data[start:end] with model,
// and appends the result to store. It returns the cost according to model.
func (s *BlockState) optimalRun(data []byte, start, end int, lengthArray []uint16, model CostModel, store *Store, h *HashChain, costs []float32) float64 {
	cost := s.bestLengths(data, start, end, model, lengthArray, h, costs)
	path := traceBackwards(end-start, lengthArray)
	s.followPath(data, start, end, path, store, h)
	assert(cost < largeFloat, "no path through the block")
	return cost
}

// Optimal parses data[start:end] as compactly as it can. The first parse
// uses the fixed Huffman code costs; each following parse uses the symbol
// statistics of the one before, for Options.NumIterations iterations. The
// parse that sizer rates smallest is returned.
//
// s must cover the same range as start and end, and have a match cache.
func (s *BlockState) Optimal(data []byte, start, end int, sizer BlockSizer) *Store {
	s.checkRange(start, end)
	blockSize := end - start
	store := NewStore(data)
	if blockSize == 0 {
		return store
	}

	lengthArray := make([]uint16, blockSize+1)
	costs := make([]float32, blockSize+1)
	h := NewHashChain()
	current := NewStore(data)

	var stats, bestStats, lastStats SymbolStats
	rnd := newRanState()
	lastRandomStep := -1
	lastCost := 0.0

	s.optimalRun(data, start, end, lengthArray, FixedCost{}, current, h, costs)
	bestCost := sizer(current, 0, current.Len())
	store = current.Clone()
	stats.FromStore(current)
	bestStats = stats
	if s.Options.VerboseMore {
		s.Options.logf("Fixed-cost parse: %d bit", int(bestCost))
	}

	for i := 0; i < s.Options.NumIterations; i++ {
		current.Reset()
		s.optimalRun(data, start, end, lengthArray, &stats, current, h, costs)
		cost := sizer(current, 0, current.Len())
		if s.Options.VerboseMore || (s.Options.Verbose && cost < bestCost) {
			s.Options.logf("Iteration %d: %d bit", i, int(cost))
		}
		if cost < bestCost {
			store = current.Clone()
			bestStats = stats
			bestCost = cost
		}

		lastStats = stats
		stats.FromStore(current)
		if lastRandomStep != -1 {
			// Damp the changes once randomization has kicked in.
			stats = addWeighted(&stats, 1.0, &lastStats, 0.5)
			stats.Calculate()
		}
		if i > 5 && cost == lastCost {
			stats = bestStats
			stats.randomize(&rnd)
			stats.Calculate()
			lastRandomStep = i
		}
		lastCost = cost
	}

	return store
}

// OptimalFixed parses data[start:end] as compactly as it can for a block
// that uses the fixed Huffman codes. A single pass is enough, since the
// costs don't depend on the parse.
func (s *BlockState) OptimalFixed(data []byte, start, end int) *Store {
	s.checkRange(start, end)
	blockSize := end - start
	store := NewStore(data)
	if blockSize == 0 {
		return store
	}
	lengthArray := make([]uint16, blockSize+1)
	costs := make([]float32, blockSize+1)
	s.optimalRun(data, start, end, lengthArray, FixedCost{}, store, NewHashChain(), costs)
	return store
}

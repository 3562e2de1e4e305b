package optflate

// lengthScore rates a match for the greedy parser. A long distance costs
// more extra bits, so a 3-byte match far back is not worth taking.
func lengthScore(length, dist int) int {
	if dist > 1024 {
		return length - 1
	}
	return length
}

// resetHash prepares h for parsing the data from start to end, indexing the
// window before start.
func resetHash(h *HashChain, data []byte, start, end int) {
	windowStart := max(start-WindowSize, 0)
	h.Reset()
	h.Warmup(data, windowStart, end)
	for i := windowStart; i < start; i++ {
		h.Update(data, i, end)
	}
}

// Greedy parses data[start:end] and appends the commands to store. At each
// position it takes the longest match, except that it looks one byte ahead
// (lazy matching) and emits a literal instead if the next position has a
// clearly better match.
//
// The bytes before start (up to a window) may be referenced by matches.
func (s *BlockState) Greedy(data []byte, start, end int, store *Store, h *HashChain) {
	if start == end {
		return
	}
	resetHash(h, data, start, end)

	var dummySublen [MaxMatch + 1]uint16
	var prevLength, prevDist int
	matchAvailable := false

	for i := start; i < end; i++ {
		h.Update(data, i, end)

		length, dist := s.FindLongestMatch(h, data, i, end, MaxMatch, dummySublen[:])
		score := lengthScore(length, dist)

		prevScore := lengthScore(prevLength, prevDist)
		if matchAvailable {
			matchAvailable = false
			if score > prevScore+1 {
				store.Add(int(data[i-1]), 0, i-1)
				if score >= MinMatch && length < MaxMatch {
					matchAvailable = true
					prevLength, prevDist = length, dist
					continue
				}
			} else {
				// Use the match from the previous position.
				length, dist = prevLength, prevDist
				if debugAsserts {
					verifyLenDist(data, end, i-1, dist, length)
				}
				store.Add(length, dist, i-1)
				for j := 2; j < length; j++ {
					i++
					h.Update(data, i, end)
				}
				continue
			}
		} else if score >= MinMatch && length < MaxMatch {
			matchAvailable = true
			prevLength, prevDist = length, dist
			continue
		}

		if score >= MinMatch {
			if debugAsserts {
				verifyLenDist(data, end, i, dist, length)
			}
			store.Add(length, dist, i)
		} else {
			length = 1
			store.Add(int(data[i]), 0, i)
		}
		for j := 1; j < length; j++ {
			i++
			h.Update(data, i, end)
		}
	}
}

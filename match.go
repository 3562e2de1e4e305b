package optflate

import (
	"encoding/binary"
	"math/bits"
)

// chainDist returns how far back the chain moves when stepping from window
// position pp to its predecessor p.
func chainDist(p, pp int) int {
	if p < pp {
		return pp - p
	}
	return WindowSize - p + pp
}

// FindLongestMatch finds the longest match for the data at pos, looking at
// most limit bytes ahead and never past size. h must have been updated up to
// and including pos.
//
// If sublen is not nil, it must have room for MaxMatch+1 entries, and
// sublen[l] is set to the smallest distance of a match of length l, for every
// l up to the returned length.
//
// A returned length below MinMatch means there is no usable match.
func (s *BlockState) FindLongestMatch(h *HashChain, data []byte, pos, size, limit int, sublen []uint16) (length, dist int) {
	if s.cache != nil {
		if l, d, ok := s.cache.lookup(pos-s.blockStart, &limit, sublen); ok {
			assert(pos+l <= size, "cached match runs past the end")
			return l, d
		}
	}

	assert(limit >= MinMatch && limit <= MaxMatch, "match limit %d out of range", limit)
	assert(pos < size, "position %d past end %d", pos, size)

	if size-pos < MinMatch {
		// The rest of the block is too short for a match.
		return 0, 0
	}
	if pos+limit > size {
		limit = size - pos
	}
	end := pos + limit

	hpos := pos & windowMask
	t := &h.primary
	pp := int(t.head[t.val])
	p := int(t.prev[pp])
	assert(pp == hpos, "hash chain not updated at %d", pos)

	dist = chainDist(p, pp)
	bestDist := 0
	bestLength := 1

	for chainCounter := maxChainHits; dist < WindowSize; {
		if dist > 0 {
			assert(dist <= pos, "distance %d before start of data at %d", dist, pos)
			scan := pos
			match := pos - dist

			// Only compare the whole thing if it could beat the best so far.
			if pos+bestLength >= size || data[scan+bestLength] == data[match+bestLength] {
				if same0 := int(h.same[hpos]); same0 > 2 && data[scan] == data[match] {
					same1 := int(h.same[(pos-dist)&windowMask])
					n := min(same0, same1, limit)
					scan += n
					match += n
				}
				scan += matchLen(data[scan:end], data[match:])
				currentLength := scan - pos

				if currentLength > bestLength {
					if sublen != nil {
						for j := bestLength + 1; j <= currentLength; j++ {
							sublen[j] = uint16(dist)
						}
					}
					bestDist = dist
					bestLength = currentLength
					if currentLength >= limit {
						break
					}
				}
			}
		}

		// Once the match is as long as the run of identical bytes, only
		// positions with the same run length can do better.
		if t == &h.primary && bestLength >= int(h.same[hpos]) && h.secondary.val == int(h.secondary.hashval[p]) {
			t = &h.secondary
		}

		pp = p
		p = int(t.prev[p])
		if p == pp {
			break
		}
		dist += chainDist(p, pp)

		chainCounter--
		if chainCounter <= 0 {
			break
		}
	}

	if s.cache != nil {
		s.cache.store(pos-s.blockStart, limit, sublen, bestDist, bestLength)
	}

	assert(bestLength <= limit, "match length %d over limit %d", bestLength, limit)
	assert(pos+bestLength <= size, "match runs past the end")
	return bestLength, bestDist
}

// matchLen returns the number of matching bytes in a and b.
// It assumes len(b) >= len(a).
func matchLen(a, b []byte) int {
	var checked int

	for len(a) >= 8 {
		if diff := binary.LittleEndian.Uint64(a) ^ binary.LittleEndian.Uint64(b); diff != 0 {
			return checked + (bits.TrailingZeros64(diff) >> 3)
		}
		checked += 8
		a = a[8:]
		b = b[8:]
	}
	b = b[:len(a)]
	for i := range a {
		if a[i] != b[i] {
			return i + checked
		}
	}
	return len(a) + checked
}

// verifyLenDist panics if the data at pos does not repeat the data dist
// bytes earlier for length bytes.
func verifyLenDist(data []byte, size, pos, dist, length int) {
	assert(pos+length <= size, "match at %d runs past the end", pos)
	for i := 0; i < length; i++ {
		assert(data[pos-dist+i] == data[pos+i], "bad match <%d,%d> at %d", length, dist, pos)
	}
}

package optflate

// A cacheEntry records that matches up to length+3 bytes are available at
// dist.
type cacheEntry struct {
	length uint8
	dist   uint16
}

// MatchCache remembers the result of the longest match search for every
// position of a block, so that the iterations of the optimal parser don't
// have to walk the hash chains again.
//
// length[i] is 0 when position i has not been searched yet, 1 when the
// search found no match of MinMatch bytes or more, and the match length
// otherwise.
type MatchCache struct {
	length []uint16
	dist   []uint16

	// sublen holds cacheLength entries per position: the distances of the
	// best matches for shorter lengths, at the points where the best
	// distance changes. The length of the last entry is the longest length
	// that can be reconstructed.
	sublen []cacheEntry
}

const (
	cacheUnknown = 0
	cacheNoMatch = 1
)

// NewMatchCache returns a cache for a block of blockSize bytes.
func NewMatchCache(blockSize int) *MatchCache {
	return &MatchCache{
		length: make([]uint16, blockSize),
		dist:   make([]uint16, blockSize),
		sublen: make([]cacheEntry, cacheLength*blockSize),
	}
}

func (c *MatchCache) entries(pos int) []cacheEntry {
	return c.sublen[pos*cacheLength : (pos+1)*cacheLength]
}

// maxCachedSublen returns the longest length for which the best distance can
// be reconstructed from the cache, or 0 if there are no sublengths cached.
func (c *MatchCache) maxCachedSublen(pos int) int {
	e := c.entries(pos)
	if e[0].dist == 0 {
		return 0
	}
	return int(e[cacheLength-1].length) + MinMatch
}

// sublenToCache stores the distances in sublen[3:length+1] at pos.
func (c *MatchCache) sublenToCache(sublen []uint16, pos, length int) {
	if length < MinMatch {
		return
	}
	e := c.entries(pos)
	j := 0
	bestLength := 0
	for i := MinMatch; i <= length; i++ {
		if i == length || sublen[i] != sublen[i+1] {
			e[j] = cacheEntry{length: uint8(i - MinMatch), dist: sublen[i]}
			bestLength = i
			j++
			if j >= cacheLength {
				break
			}
		}
	}
	if j < cacheLength {
		assert(bestLength == length, "cached sublength %d != %d", bestLength, length)
		e[cacheLength-1].length = uint8(bestLength - MinMatch)
	} else {
		assert(bestLength <= length, "cached sublength %d > %d", bestLength, length)
	}
}

// cacheToSublen expands the cached distances at pos into sublen[0:length+1].
func (c *MatchCache) cacheToSublen(pos, length int, sublen []uint16) {
	if length < MinMatch {
		return
	}
	maxLength := c.maxCachedSublen(pos)
	prevLength := 0
	for _, e := range c.entries(pos) {
		l := int(e.length) + MinMatch
		for i := prevLength; i <= l; i++ {
			sublen[i] = e.dist
		}
		if l == maxLength {
			break
		}
		prevLength = l + 1
	}
}

// lookup returns the cached match at pos (relative to the block start), if
// it can answer a search with the given limit. If the cache can't answer
// because sublengths beyond the cached ones are needed, it lowers *limit to
// the cached match length, since searching further is pointless.
func (c *MatchCache) lookup(pos int, limit *int, sublen []uint16) (length, dist int, ok bool) {
	cached := int(c.length[pos])
	switch cached {
	case cacheUnknown:
		return 0, 0, false
	case cacheNoMatch:
		return 0, 0, true
	}

	maxSublen := 0
	if sublen != nil {
		maxSublen = c.maxCachedSublen(pos)
	}
	if !(*limit == MaxMatch || cached <= *limit || (sublen != nil && maxSublen >= *limit)) {
		return 0, 0, false
	}

	if sublen == nil || cached <= maxSublen {
		length = min(cached, *limit)
		if sublen != nil {
			c.cacheToSublen(pos, length, sublen)
			dist = int(sublen[length])
			if *limit == MaxMatch && length >= MinMatch {
				assert(dist == int(c.dist[pos]), "cached distance %d != %d", dist, c.dist[pos])
			}
		} else {
			dist = int(c.dist[pos])
		}
		return length, dist, true
	}

	*limit = cached
	return 0, 0, false
}

// store records the result of a full-length search at pos (relative to the
// block start). Only searches with the maximum limit and sublengths are
// cached, and only the first time.
func (c *MatchCache) store(pos, limit int, sublen []uint16, dist, length int) {
	if limit != MaxMatch || sublen == nil || c.length[pos] != cacheUnknown {
		return
	}
	if length < MinMatch {
		c.length[pos] = cacheNoMatch
		c.dist[pos] = 0
		return
	}
	c.length[pos] = uint16(length)
	c.dist[pos] = uint16(dist)
	c.sublenToCache(sublen, pos, length)
}

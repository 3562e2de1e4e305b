package flate

import (
	"math"
	"slices"

	"github.com/andybalholm/optflate"
)

// findMinimum returns the position in [start,end) where f is smallest, and
// the value there. Small ranges are scanned completely. Large ones are
// sampled at a few evenly spaced points, narrowing the range around the
// best sample each round until it is small enough to scan, which finds a
// local minimum.
func findMinimum(f func(i int) float64, start, end int) (pos int, smallest float64) {
	if end-start < 1024 {
		best := math.MaxFloat64
		pos = start
		for i := start; i < end; i++ {
			if v := f(i); v < best {
				best = v
				pos = i
			}
		}
		return pos, best
	}

	const num = 9
	var p [num]int
	var vp [num]float64
	lastBest := math.MaxFloat64
	pos = start

	for end-start > num {
		for i := range p {
			p[i] = start + (i+1)*((end-start)/(num+1))
			vp[i] = f(p[i])
		}
		besti := 0
		best := vp[0]
		for i := 1; i < num; i++ {
			if vp[i] < best {
				best = vp[i]
				besti = i
			}
		}
		if best > lastBest {
			break
		}

		if besti > 0 {
			start = p[besti-1]
		}
		if besti < num-1 {
			end = p[besti+1]
		}

		pos = p[besti]
		lastBest = best
	}

	if end-start <= num {
		for i := start; i < end; i++ {
			if v := f(i); v < lastBest {
				lastBest = v
				pos = i
			}
		}
	}
	return pos, lastBest
}

// largestSplittable returns the longest range between split points that
// hasn't been marked done.
func largestSplittable(storeSize int, done []bool, splitPoints []int) (lstart, lend int, found bool) {
	longest := 0
	for i := 0; i <= len(splitPoints); i++ {
		start := 0
		if i > 0 {
			start = splitPoints[i-1]
		}
		end := storeSize - 1
		if i < len(splitPoints) {
			end = splitPoints[i]
		}
		if !done[start] && end-start > longest {
			lstart, lend = start, end
			found = true
			longest = end - start
		}
	}
	return lstart, lend, found
}

// SplitLZ77 chooses where to split the commands in store into blocks, and
// returns the indexes of the commands that start a new block. It keeps
// splitting the largest remaining range at its cheapest point, as long as
// that makes the estimated output smaller. maxBlocks limits the number of
// blocks; 0 means no limit.
func SplitLZ77(opts *optflate.Options, store *optflate.Store, maxBlocks int) []int {
	if store.Len() < 10 {
		return nil
	}

	var splitPoints []int
	done := make([]bool, store.Len())
	numBlocks := 1
	lstart, lend := 0, store.Len()

	for {
		if maxBlocks > 0 && numBlocks >= maxBlocks {
			break
		}
		assert(lstart < lend, "empty range to split")

		splitCost := func(i int) float64 {
			return BlockSizeAutoType(store, lstart, i) + BlockSizeAutoType(store, i, lend)
		}
		llpos, cost := findMinimum(splitCost, lstart+1, lend)
		assert(llpos > lstart && llpos < lend, "split point %d outside (%d,%d)", llpos, lstart, lend)

		origCost := BlockSizeAutoType(store, lstart, lend)
		if cost > origCost || llpos == lstart+1 || llpos == lend {
			done[lstart] = true
		} else {
			i, _ := slices.BinarySearch(splitPoints, llpos)
			splitPoints = slices.Insert(splitPoints, i, llpos)
			numBlocks++
		}

		var found bool
		lstart, lend, found = largestSplittable(store.Len(), done, splitPoints)
		if !found || lend-lstart < 10 {
			break
		}
	}

	if opts != nil && opts.Verbose {
		opts.Logf("block split points: %v", splitPoints)
	}
	return splitPoints
}

// Split chooses where to split data[start:end] into blocks, and returns the
// positions in data where a new block starts. The split is based on a quick
// greedy parse of the data.
func Split(opts *optflate.Options, data []byte, start, end, maxBlocks int) []int {
	s := optflate.NewBlockState(opts, start, end, false)
	store := optflate.NewStore(data)
	s.Greedy(data, start, end, store, optflate.NewHashChain())

	lz77Points := SplitLZ77(opts, store, maxBlocks)
	if len(lz77Points) == 0 {
		return nil
	}

	// Convert command indexes to byte positions.
	splitPoints := make([]int, 0, len(lz77Points))
	pos := start
	for i := 0; i < store.Len(); i++ {
		if lz77Points[len(splitPoints)] == i {
			splitPoints = append(splitPoints, pos)
			if len(splitPoints) == len(lz77Points) {
				break
			}
		}
		if store.Dists[i] == 0 {
			pos++
		} else {
			pos += int(store.Litlens[i])
		}
	}
	assert(len(splitPoints) == len(lz77Points), "lost split points")
	return splitPoints
}

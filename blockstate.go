package optflate

// A BlockState holds what the parsers need while working on one block of
// the input: the options and, optionally, a match cache covering the block.
type BlockState struct {
	Options *Options

	cache *MatchCache

	blockStart int
	blockEnd   int
}

// NewBlockState returns a BlockState for the block of data from start to
// end. If withCache is true, match searches in the block are cached; that
// pays off when the block is parsed more than once.
func NewBlockState(opts *Options, start, end int, withCache bool) *BlockState {
	assert(start <= end, "invalid block [%d,%d)", start, end)
	s := &BlockState{
		Options:    opts,
		blockStart: start,
		blockEnd:   end,
	}
	if withCache {
		s.cache = NewMatchCache(end - start)
	}
	return s
}

// checkRange panics if start and end are not the block s was made for;
// the match cache is indexed relative to the block start.
func (s *BlockState) checkRange(start, end int) {
	assert(start == s.blockStart && end == s.blockEnd,
		"range [%d,%d) doesn't match block [%d,%d)", start, end, s.blockStart, s.blockEnd)
}

package flate

import (
	"cmp"
	"slices"
)

// maxCodeBits is the longest Huffman code DEFLATE allows for the
// literal/length and distance alphabets.
const maxCodeBits = 15

type leaf struct {
	weight int
	symbol int
}

// A pmNode is a chain node of the boundary package-merge algorithm. Nodes
// live in an arena and refer to each other by index; a tail of -1 means the
// end of the chain. One node can be the tail of several chains.
type pmNode struct {
	weight int
	count  int
	tail   int32
}

type packageMerge struct {
	leaves []leaf
	nodes  []pmNode

	// lists[i] holds the last two chains of list i.
	lists [][2]int32
}

func (pm *packageMerge) newNode(weight, count int, tail int32) int32 {
	pm.nodes = append(pm.nodes, pmNode{weight: weight, count: count, tail: tail})
	return int32(len(pm.nodes) - 1)
}

// run performs one step of boundary package-merge on list index, adding a
// chain for either the next leaf or a package of the two lightest chains of
// the list below.
func (pm *packageMerge) run(index int) {
	numSymbols := len(pm.leaves)
	lastCount := pm.nodes[pm.lists[index][1]].count

	if index == 0 && lastCount >= numSymbols {
		return
	}

	oldChain := pm.lists[index][1]
	pm.lists[index][0] = oldChain

	if index == 0 {
		pm.lists[index][1] = pm.newNode(pm.leaves[lastCount].weight, lastCount+1, -1)
		return
	}

	below := pm.lists[index-1]
	sum := pm.nodes[below[0]].weight + pm.nodes[below[1]].weight
	if lastCount < numSymbols && sum >= pm.leaves[lastCount].weight {
		pm.lists[index][1] = pm.newNode(pm.leaves[lastCount].weight, lastCount+1, pm.nodes[oldChain].tail)
		return
	}

	pm.lists[index][1] = pm.newNode(sum, lastCount, below[1])
	// The package used up two chains of the list below; replace them.
	pm.run(index - 1)
	pm.run(index - 1)
}

// runFinal is the last step: only the final chain of the top list matters,
// so no new package node is needed.
func (pm *packageMerge) runFinal(index int) {
	numSymbols := len(pm.leaves)
	top := pm.lists[index][1]
	lastCount := pm.nodes[top].count

	below := pm.lists[index-1]
	sum := pm.nodes[below[0]].weight + pm.nodes[below[1]].weight
	if lastCount < numSymbols && sum >= pm.leaves[lastCount].weight {
		pm.lists[index][1] = pm.newNode(0, lastCount+1, pm.nodes[top].tail)
		return
	}
	pm.nodes[top].tail = below[1]
}

// extractBitLengths converts the final chain into code lengths: the counts
// along the chain say how many of the lightest leaves are active in each
// list, and a leaf gets one bit for each list it is active in.
func (pm *packageMerge) extractBitLengths(chain int32, maxBits int, bitLengths []int) {
	counts := make([]int, maxBits)
	end := maxBits
	for n := chain; n != -1; n = pm.nodes[n].tail {
		end--
		counts[end] = pm.nodes[n].count
	}

	val := counts[maxBits-1]
	value := 1
	for ptr := maxBits - 1; ptr >= end; ptr-- {
		below := 0
		if ptr > 0 {
			below = counts[ptr-1]
		}
		for ; val > below; val-- {
			bitLengths[pm.leaves[val-1].symbol] = value
		}
		value++
	}
}

// LengthLimitedCodeLengths sets bitLengths to optimal Huffman code lengths
// for the symbol frequencies in freqs, with no code longer than maxBits.
// Symbols with a frequency of 0 get length 0. It panics if there are more
// used symbols than codes of maxBits bits can distinguish.
func LengthLimitedCodeLengths(freqs []int, maxBits int, bitLengths []int) {
	for i := range bitLengths[:len(freqs)] {
		bitLengths[i] = 0
	}

	var leaves []leaf
	for i, f := range freqs {
		if f != 0 {
			leaves = append(leaves, leaf{weight: f, symbol: i})
		}
	}
	numSymbols := len(leaves)
	assert(maxBits >= 1 && (maxBits >= 31 || 1<<maxBits >= numSymbols), "%d symbols don't fit in %d-bit codes", numSymbols, maxBits)

	switch numSymbols {
	case 0:
		return
	case 1:
		bitLengths[leaves[0].symbol] = 1
		return
	case 2:
		bitLengths[leaves[0].symbol] = 1
		bitLengths[leaves[1].symbol] = 1
		return
	}

	// Lightest first; equal weights stay in symbol order.
	slices.SortStableFunc(leaves, func(a, b leaf) int {
		return cmp.Compare(a.weight, b.weight)
	})

	// A code can't be longer than numSymbols-1 bits anyway.
	if numSymbols-1 < maxBits {
		maxBits = numSymbols - 1
	}

	pm := &packageMerge{
		leaves: leaves,
		nodes:  make([]pmNode, 0, maxBits*2*numSymbols),
		lists:  make([][2]int32, maxBits),
	}
	node0 := pm.newNode(leaves[0].weight, 1, -1)
	node1 := pm.newNode(leaves[1].weight, 2, -1)
	for i := range pm.lists {
		pm.lists[i] = [2]int32{node0, node1}
	}

	// Each run adds one chain to the top list; the first two are there
	// already.
	numRuns := 2*numSymbols - 4
	for i := 0; i < numRuns-1; i++ {
		pm.run(maxBits - 1)
	}
	pm.runFinal(maxBits - 1)

	pm.extractBitLengths(pm.lists[maxBits-1][1], maxBits, bitLengths)
}

// LengthsToSymbols computes the canonical Huffman codes for the code
// lengths in lengths (RFC 1951 section 3.2.2).
func LengthsToSymbols(lengths []int, maxBits int, symbols []uint32) {
	blCount := make([]int, maxBits+1)
	nextCode := make([]uint32, maxBits+1)

	for i, l := range lengths {
		assert(l <= maxBits, "code length %d over %d", l, maxBits)
		blCount[l]++
		symbols[i] = 0
	}
	blCount[0] = 0

	var code uint32
	for b := 1; b <= maxBits; b++ {
		code = (code + uint32(blCount[b-1])) << 1
		nextCode[b] = code
	}

	for i, l := range lengths {
		if l != 0 {
			symbols[i] = nextCode[l]
			nextCode[l]++
		}
	}
}

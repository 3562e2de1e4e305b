package optflate

import "math"

const (
	hashShift   = 5
	hashMask    = 32767
	hashBuckets = 65536
)

// A chainTable is one rolling hash with its hash chains. head holds the most
// recent window position for each hash value (or -1), and prev links each
// window position to the previous position that had the same hash value. A
// position with no predecessor links to itself.
type chainTable struct {
	head    [hashBuckets]int32
	prev    [WindowSize]uint16
	hashval [WindowSize]int32
	val     int
}

func (t *chainTable) reset() {
	t.val = 0
	for i := range t.head {
		t.head[i] = -1
	}
	for i := range t.prev {
		t.prev[i] = uint16(i)
		t.hashval[i] = -1
	}
}

// roll shifts c into the hash value.
func (t *chainTable) roll(c byte) {
	t.val = ((t.val << hashShift) ^ int(c)) & hashMask
}

// insert makes hpos the head of the chain for the current hash value.
func (t *chainTable) insert(hpos int) {
	t.hashval[hpos] = int32(t.val)
	if h := t.head[t.val]; h != -1 && t.hashval[h] == int32(t.val) {
		t.prev[hpos] = uint16(h)
	} else {
		t.prev[hpos] = uint16(hpos)
	}
	t.head[t.val] = int32(hpos)
}

// HashChain indexes the sliding window so that all earlier positions starting
// with the same three bytes can be visited, most recent first.
//
// It keeps two chain tables. The primary one hashes the next three bytes. The
// secondary one also mixes in the length of the run of identical bytes at the
// position, so that inside long runs the match finder can jump straight to
// candidates with a similar run length.
type HashChain struct {
	primary   chainTable
	secondary chainTable

	// same[i] is how many of the bytes following window position i are equal
	// to the byte at i.
	same [WindowSize]uint16
}

// NewHashChain returns an empty HashChain.
func NewHashChain() *HashChain {
	h := new(HashChain)
	h.Reset()
	return h
}

func (h *HashChain) Reset() {
	h.primary.reset()
	h.secondary.reset()
	for i := range h.same {
		h.same[i] = 0
	}
}

// Warmup feeds the first two bytes at pos into the rolling hash, so that the
// first call to Update produces a hash of three real bytes.
func (h *HashChain) Warmup(data []byte, pos, end int) {
	h.primary.roll(data[pos])
	if pos+1 < end {
		h.primary.roll(data[pos+1])
	}
}

// Update adds the position pos to the hash chains. Positions must be added
// in order; end is the end of the data that may be looked at.
func (h *HashChain) Update(data []byte, pos, end int) {
	hpos := pos & windowMask

	var c byte
	if pos+MinMatch <= end {
		c = data[pos+MinMatch-1]
	}
	h.primary.roll(c)
	h.primary.insert(hpos)

	amount := 0
	if prev := h.same[(pos-1)&windowMask]; prev > 1 {
		amount = int(prev) - 1
	}
	for pos+amount+1 < end && data[pos] == data[pos+amount+1] && amount < math.MaxUint16 {
		amount++
	}
	h.same[hpos] = uint16(amount)

	h.secondary.val = ((amount - MinMatch) & 255) ^ h.primary.val
	h.secondary.insert(hpos)
}

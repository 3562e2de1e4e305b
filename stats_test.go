package optflate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntropy(t *testing.T) {
	bits := make([]float64, 4)
	Entropy([]int{1, 1, 2, 0}, bits)
	require.InDeltaSlice(t, []float64{2, 2, 1, 2}, bits, 1e-9)

	Entropy([]int{0, 0, 0, 0}, bits)
	require.InDeltaSlice(t, []float64{2, 2, 2, 2}, bits, 1e-9)

	// A single symbol costs nothing.
	Entropy([]int{0, 5, 0, 0}, bits)
	require.Equal(t, 0.0, bits[1])
}

func TestSymbolStatsCost(t *testing.T) {
	data := repetitiveData(4000, 8)
	store := NewStore(data)
	NewBlockState(DefaultOptions(), 0, len(data), false).Greedy(data, 0, len(data), store, NewHashChain())

	var st SymbolStats
	st.FromStore(store)
	require.Equal(t, 1, st.Litlens[256])

	// The sum of the costs is the entropy of the whole store, which is
	// a lower bound for any prefix code.
	var total float64
	for i := range store.Litlens {
		total += st.Cost(int(store.Litlens[i]), int(store.Dists[i]))
	}
	require.False(t, math.IsNaN(total))
	require.Less(t, total, fixedSizer(store, 0, store.Len()))
	require.Greater(t, minCost(&st), 0.0)
}

func TestRanState(t *testing.T) {
	r := newRanState()
	require.Equal(t, uint32(550651472), r.next())

	// Two generators with the same seed agree.
	a, b := newRanState(), newRanState()
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.next(), b.next())
	}
}

func TestAddWeighted(t *testing.T) {
	var a, b SymbolStats
	a.Litlens['x'] = 10
	b.Litlens['x'] = 4
	a.Dists[3] = 3
	r := addWeighted(&a, 1.0, &b, 0.5)
	require.Equal(t, 12, r.Litlens['x'])
	require.Equal(t, 3, r.Dists[3])
	require.Equal(t, 1, r.Litlens[256])
}

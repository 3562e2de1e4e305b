package optflate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistSymbolRoundTrip(t *testing.T) {
	for dist := 1; dist <= WindowSize; dist++ {
		sym := DistSymbol(dist)
		require.True(t, sym >= 0 && sym < 30, "dist %d: symbol %d", dist, sym)
		extra := DistExtraBitsValue(dist)
		require.Equal(t, DistSymbolExtraBits(sym), DistExtraBits(dist), "dist %d", dist)
		require.Less(t, extra, 1<<DistExtraBits(dist), "dist %d", dist)
		require.Equal(t, dist, DistFromSymbol(sym, extra))
	}
}

func TestLengthSymbolRoundTrip(t *testing.T) {
	for length := MinMatch; length <= MaxMatch; length++ {
		sym := LengthSymbol(length)
		require.True(t, sym >= 257 && sym <= 285, "length %d: symbol %d", length, sym)
		extra := LengthExtraBitsValue(length)
		require.Equal(t, LengthSymbolExtraBits(sym), LengthExtraBits(length), "length %d", length)
		require.Less(t, extra, 1<<LengthExtraBits(length), "length %d", length)
		require.Equal(t, length, LengthFromSymbol(sym, extra))
	}
	require.Equal(t, 285, LengthSymbol(258))
	require.Equal(t, 0, LengthExtraBits(258))
	require.Equal(t, 284, LengthSymbol(257))
}

func TestFixedCost(t *testing.T) {
	var c FixedCost
	require.Equal(t, 8.0, c.Cost('a', 0))
	require.Equal(t, 9.0, c.Cost(200, 0))
	// Symbol 257 (7 bits) and distance code 0 (5 bits).
	require.Equal(t, 12.0, c.Cost(3, 1))
	// Symbol 285 (8 bits), distance code 29 (5 bits + 13 extra).
	require.Equal(t, 26.0, c.Cost(258, 32768))
	require.Equal(t, 12.0, minCost(c))
}

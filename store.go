package optflate

// A Store holds the LZ77 commands for some data: each command is a literal
// byte or a back-reference (length and distance), together with the position
// in Data where it starts.
//
// Besides the commands themselves, a Store keeps cumulative symbol
// histograms every NumLL (respectively NumD) commands, so that the histogram
// of any range of commands can be computed quickly.
type Store struct {
	// Litlens holds the literal byte, or the length of a match.
	Litlens []uint16

	// Dists holds the match distance, or 0 for a literal.
	Dists []uint16

	// Pos holds the position in Data of each command.
	Pos []int

	Data []byte

	llSymbol []uint16
	dSymbol  []uint16

	// llCounts holds, for each chunk of NumLL commands, the literal/length
	// symbol counts from the start of the store up to the end of the chunk.
	// dCounts is the same for distance symbols, in chunks of NumD.
	llCounts []int
	dCounts  []int
}

// NewStore returns an empty Store for commands that refer to data.
func NewStore(data []byte) *Store {
	return &Store{Data: data}
}

// Len returns the number of commands.
func (s *Store) Len() int {
	return len(s.Litlens)
}

// Reset removes all the commands, keeping the allocated memory.
func (s *Store) Reset() {
	s.Litlens = s.Litlens[:0]
	s.Dists = s.Dists[:0]
	s.Pos = s.Pos[:0]
	s.llSymbol = s.llSymbol[:0]
	s.dSymbol = s.dSymbol[:0]
	s.llCounts = s.llCounts[:0]
	s.dCounts = s.dCounts[:0]
}

// Add appends a command. For a literal, litlen is the byte value and dist
// is 0. pos is where the command starts in Data.
func (s *Store) Add(litlen, dist, pos int) {
	assert(dist >= 0 && dist <= WindowSize, "distance %d out of range", dist)
	if dist == 0 {
		assert(litlen >= 0 && litlen < 256, "literal %d out of range", litlen)
	} else {
		assert(litlen >= MinMatch && litlen <= MaxMatch, "length %d out of range", litlen)
	}

	n := len(s.Litlens)
	llStart := NumLL * (n / NumLL)
	dStart := NumD * (n / NumD)

	// Start a new chunk with a copy of the previous totals.
	if n%NumLL == 0 {
		if n == 0 {
			s.llCounts = append(s.llCounts, make([]int, NumLL)...)
		} else {
			s.llCounts = append(s.llCounts, s.llCounts[n-NumLL:n]...)
		}
	}
	if n%NumD == 0 {
		if n == 0 {
			s.dCounts = append(s.dCounts, make([]int, NumD)...)
		} else {
			s.dCounts = append(s.dCounts, s.dCounts[n-NumD:n]...)
		}
	}

	s.Litlens = append(s.Litlens, uint16(litlen))
	s.Dists = append(s.Dists, uint16(dist))
	s.Pos = append(s.Pos, pos)

	if dist == 0 {
		s.llSymbol = append(s.llSymbol, uint16(litlen))
		s.dSymbol = append(s.dSymbol, 0)
		s.llCounts[llStart+litlen]++
		return
	}

	ls := LengthSymbol(litlen)
	ds := DistSymbol(dist)
	s.llSymbol = append(s.llSymbol, uint16(ls))
	s.dSymbol = append(s.dSymbol, uint16(ds))
	s.llCounts[llStart+ls]++
	s.dCounts[dStart+ds]++
}

// LLSymbol returns the literal/length symbol of command i.
func (s *Store) LLSymbol(i int) int {
	return int(s.llSymbol[i])
}

// DSymbol returns the distance symbol of command i. It is meaningless for
// literals.
func (s *Store) DSymbol(i int) int {
	return int(s.dSymbol[i])
}

// Clone returns a copy of s that shares Data.
func (s *Store) Clone() *Store {
	return &Store{
		Litlens:  append([]uint16(nil), s.Litlens...),
		Dists:    append([]uint16(nil), s.Dists...),
		Pos:      append([]int(nil), s.Pos...),
		Data:     s.Data,
		llSymbol: append([]uint16(nil), s.llSymbol...),
		dSymbol:  append([]uint16(nil), s.dSymbol...),
		llCounts: append([]int(nil), s.llCounts...),
		dCounts:  append([]int(nil), s.dCounts...),
	}
}

// AppendStore adds all the commands in src to the end of s.
func (s *Store) AppendStore(src *Store) {
	for i := range src.Litlens {
		s.Add(int(src.Litlens[i]), int(src.Dists[i]), src.Pos[i])
	}
}

// ByteRange returns how many bytes of Data commands lstart up to lend cover.
func (s *Store) ByteRange(lstart, lend int) int {
	if lstart == lend {
		return 0
	}
	assert(lstart >= 0 && lstart < lend && lend <= s.Len(), "invalid command range [%d,%d)", lstart, lend)
	l := lend - 1
	length := 1
	if s.Dists[l] != 0 {
		length = int(s.Litlens[l])
	}
	return s.Pos[l] + length - s.Pos[lstart]
}

// histogramAt sets ll and d to the symbol counts of commands 0 up to and
// including lpos.
func (s *Store) histogramAt(lpos int, ll *[NumLL]int, d *[NumD]int) {
	llPos := NumLL * (lpos / NumLL)
	dPos := NumD * (lpos / NumD)
	copy(ll[:], s.llCounts[llPos:llPos+NumLL])
	for i := lpos + 1; i < llPos+NumLL && i < s.Len(); i++ {
		ll[s.llSymbol[i]]--
	}
	copy(d[:], s.dCounts[dPos:dPos+NumD])
	for i := lpos + 1; i < dPos+NumD && i < s.Len(); i++ {
		if s.Dists[i] != 0 {
			d[s.dSymbol[i]]--
		}
	}
}

// Histogram returns the literal/length and distance symbol counts of
// commands lstart up to lend. The end-of-block symbol is not counted.
func (s *Store) Histogram(lstart, lend int) (ll [NumLL]int, d [NumD]int) {
	assert(lstart >= 0 && lstart <= lend && lend <= s.Len(), "invalid command range [%d,%d)", lstart, lend)
	if lstart == lend {
		return ll, d
	}

	if lstart+NumLL*3 > lend {
		for i := lstart; i < lend; i++ {
			ll[s.llSymbol[i]]++
			if s.Dists[i] != 0 {
				d[s.dSymbol[i]]++
			}
		}
		return ll, d
	}

	// The difference of the running totals at the two ends.
	s.histogramAt(lend-1, &ll, &d)
	if lstart > 0 {
		var ll2 [NumLL]int
		var d2 [NumD]int
		s.histogramAt(lstart-1, &ll2, &d2)
		for i := range ll {
			ll[i] -= ll2[i]
		}
		for i := range d {
			d[i] -= d2[i]
		}
	}
	return ll, d
}

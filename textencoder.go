package optflate

import "strconv"

// AppendText appends a human-readable form of commands lstart up to lend to
// dst. Literals are copied as they are, and matches are replaced with
// <length,distance> symbols.
func (s *Store) AppendText(dst []byte, lstart, lend int) []byte {
	for i := lstart; i < lend; i++ {
		if s.Dists[i] == 0 {
			dst = append(dst, byte(s.Litlens[i]))
			continue
		}
		dst = append(dst, '<')
		dst = strconv.AppendInt(dst, int64(s.Litlens[i]), 10)
		dst = append(dst, ',')
		dst = strconv.AppendInt(dst, int64(s.Dists[i]), 10)
		dst = append(dst, '>')
	}
	return dst
}

// String returns the text form of all the commands in s.
func (s *Store) String() string {
	return string(s.AppendText(nil, 0, s.Len()))
}

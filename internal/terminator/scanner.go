package terminator

// CRLFCRLF ends every HTTP/1.x head.
const CRLFCRLF = "\r\n\r\n"

// Scanner tracks, across an arbitrary sequence of chunks, how many trailing bytes seen so
// far match a prefix of the pattern. Partial matches that break are rewound along the
// pattern's failure table rather than dropped, so self-overlapping patterns like CRLFCRLF
// are never missed regardless of how the stream is split.
type Scanner struct {
	pattern string
	// fallback[i] is the length of the longest proper border of pattern[:i+1]
	fallback []int
	matched  int
}

func New(pattern string) *Scanner {
	if len(pattern) == 0 {
		panic("terminator: empty pattern")
	}

	return &Scanner{
		pattern:  pattern,
		fallback: borders(pattern),
	}
}

// Head returns a scanner looking for the end of an HTTP/1.x head.
func Head() *Scanner {
	return New(CRLFCRLF)
}

// Process feeds the next chunk. The chunk must not be longer than Remaining(), which also
// guarantees that the pattern may complete only on the last byte of the chunk.
func (s *Scanner) Process(chunk []byte) {
	if len(chunk) > s.Remaining() {
		panic("terminator: chunk exceeds the remaining pattern length")
	}

	for _, c := range chunk {
		for s.matched > 0 && c != s.pattern[s.matched] {
			s.matched = s.fallback[s.matched-1]
		}

		if c == s.pattern[s.matched] {
			s.matched++
		}
	}
}

// Remaining is the number of bytes that may be read before the match state must be
// re-evaluated. It is also exactly how many more bytes are needed to complete the pattern.
func (s *Scanner) Remaining() int {
	return len(s.pattern) - s.matched
}

// Matched returns the length of the current partial match.
func (s *Scanner) Matched() int {
	return s.matched
}

func (s *Scanner) Done() bool {
	return s.matched == len(s.pattern)
}

func (s *Scanner) Reset() {
	s.matched = 0
}

func borders(pattern string) []int {
	table := make([]int, len(pattern))

	for i, k := 1, 0; i < len(pattern); i++ {
		for k > 0 && pattern[i] != pattern[k] {
			k = table[k-1]
		}

		if pattern[i] == pattern[k] {
			k++
		}

		table[i] = k
	}

	return table
}

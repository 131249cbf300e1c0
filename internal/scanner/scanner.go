package scanner

type Pos struct {
	Line int
	Col  int
}

// Scanner reads bytes from a buffer that is filled by successive calls to
// Append.  Unlike a reader-backed scanner it never blocks: when the buffered
// input is exhausted Read reports it and the caller can Rewind to the last
// Mark, wait for more input and try again.
type Scanner struct {
	buf []byte

	// Current position in buf
	// 0 <= currentIndex <= len(buf)
	currentIndex int

	// Records lineno and colno of current position (from when the scanning
	// started)
	currentPos Pos

	// Position in buf of the start of the token being scanned, and its
	// line/col.
	// 0 <= markIndex <= currentIndex
	markIndex int
	markPos   Pos

	// Total number of bytes dropped by Compact, so MarkOffset() is stable.
	dropped int
}

func NewScanner() *Scanner {
	return &Scanner{}
}

// Append adds a chunk of input at the end of the buffer.
func (s *Scanner) Append(chunk string) {
	s.buf = append(s.buf, chunk...)
}

// Read returns the next byte and advances.  ok is false if all buffered
// input has been consumed.
func (s *Scanner) Read() (b byte, ok bool) {
	if s.currentIndex >= len(s.buf) {
		return 0, false
	}
	b = s.buf[s.currentIndex]
	switch {
	case b == '\n':
		s.currentPos.Line++
		s.currentPos.Col = 0
	case b < 0x80 || b >= 0xC0:
		// Count one column per codepoint: skip utf8 continuation bytes
		s.currentPos.Col++
	}
	s.currentIndex++
	return b, true
}

func (s *Scanner) Peek() (b byte, ok bool) {
	if s.currentIndex >= len(s.buf) {
		return 0, false
	}
	return s.buf[s.currentIndex], true
}

// Mark records the current position as the start of a token.
func (s *Scanner) Mark() Pos {
	s.markIndex = s.currentIndex
	s.markPos = s.currentPos
	return s.currentPos
}

// Rewind moves back to the last Mark, un-reading everything since.
func (s *Scanner) Rewind() {
	s.currentIndex = s.markIndex
	s.currentPos = s.markPos
}

// Marked returns the bytes read since the last Mark.  The returned slice is
// only valid until the next call to Append or Compact.
func (s *Scanner) Marked() []byte {
	return s.buf[s.markIndex:s.currentIndex]
}

func (s *Scanner) MarkPos() Pos {
	return s.markPos
}

// MarkOffset returns the byte offset of the last Mark from the start of the
// input.
func (s *Scanner) MarkOffset() int {
	return s.dropped + s.markIndex
}

// Compact discards the bytes before the current position.  The mark is
// moved to the current position.
func (s *Scanner) Compact() {
	n := copy(s.buf, s.buf[s.currentIndex:])
	s.dropped += s.currentIndex
	s.buf = s.buf[:n]
	// Let a large buffer be GCed once it is mostly empty
	if cap(s.buf) > compactCapacityThreshold && n*4 < cap(s.buf) {
		s.buf = append(make([]byte, 0, 2*n), s.buf...)
	}
	s.currentIndex = 0
	s.markIndex = 0
	s.markPos = s.currentPos
}

const compactCapacityThreshold = 64 * 1024

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"unicode/utf8"
)

// A Source delivers the text of a document in chunks.  Next blocks until the
// next chunk is available and returns io.EOF once the document is complete.
// Chunks never split a UTF-8 encoded rune.
type Source interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// An Opener connects to the document described by a session.  Errors returned
// by Open mean that the stream could not be started at all.
type Opener interface {
	Open(ctx context.Context, session *Session) (Source, error)
}

// OpenerFunc lets a plain function be used as an Opener.
type OpenerFunc func(ctx context.Context, session *Session) (Source, error)

func (f OpenerFunc) Open(ctx context.Context, session *Session) (Source, error) {
	return f(ctx, session)
}

var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// SchemeOpener picks an Opener according to the scheme of the session URL.
// The empty scheme is used for plain file paths.
type SchemeOpener map[string]Opener

func (m SchemeOpener) Open(ctx context.Context, session *Session) (Source, error) {
	scheme := ""
	if session.URL != "-" {
		u, err := url.Parse(session.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", session.URL, err)
		}
		scheme = u.Scheme
	}
	opener, ok := m[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return opener.Open(ctx, session)
}

// DefaultOpener handles http, https, ws, wss, file and plain paths.
var DefaultOpener = SchemeOpener{
	"http":  &HTTPOpener{},
	"https": &HTTPOpener{},
	"ws":    &WebSocketOpener{},
	"wss":   &WebSocketOpener{},
	"file":  FileOpener{},
	"":      FileOpener{},
}

// Open opens the session with DefaultOpener.
func Open(ctx context.Context, session *Session) (Source, error) {
	return DefaultOpener.Open(ctx, session)
}

// ChunkSource is a Source that returns a fixed list of chunks.  Chunks are
// returned as given, even if they split a rune.
type ChunkSource struct {
	chunks []string
	closed bool
}

var _ Source = &ChunkSource{}

func NewChunkSource(chunks ...string) *ChunkSource {
	return &ChunkSource{chunks: chunks}
}

func (s *ChunkSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.closed {
		return "", ErrClosed
	}
	if len(s.chunks) == 0 {
		return "", io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *ChunkSource) Close() error {
	s.closed = true
	return nil
}

var ErrClosed = errors.New("source closed")

// ReaderSource turns an io.Reader into a Source.  Each call to Next performs
// at most one successful Read, so chunks follow the pace of the reader.
type ReaderSource struct {
	reader io.ReadCloser
	buf    []byte

	// Bytes of an incomplete rune at the end of the previous read.
	pending []byte
	err     error
}

var _ Source = &ReaderSource{}

func NewReaderSource(r io.ReadCloser) *ReaderSource {
	return NewReaderSourceSize(r, defaultBufSize)
}

func NewReaderSourceSize(r io.ReadCloser, size int) *ReaderSource {
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}
	return &ReaderSource{reader: r, buf: make([]byte, size)}
}

func (s *ReaderSource) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n := copy(s.buf, s.pending)
		m, err := s.reader.Read(s.buf[n:])
		n += m
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			s.err = err
			s.pending = nil
			if n > 0 {
				// Whatever is left is delivered, even an incomplete rune.
				return string(s.buf[:n]), nil
			}
			return "", err
		}
		if m == 0 {
			continue
		}
		complete, rest := splitIncompleteRune(s.buf[:n])
		s.pending = append(s.pending[:0], rest...)
		if len(complete) > 0 {
			return string(complete), nil
		}
	}
	s.err = io.ErrNoProgress
	return "", s.err
}

func (s *ReaderSource) Close() error {
	return s.reader.Close()
}

// splitIncompleteRune separates the bytes of a rune cut at the end of b.
func splitIncompleteRune(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return b, nil
			}
			return b[:i], b[i:]
		}
	}
	return b, nil
}

const (
	maxConsecutiveEmptyReads = 100
	defaultBufSize           = 8192
)

// Package transport supplies the chunks of text that a JSON document is
// streamed in.  A Session describes where the document comes from and an
// Opener turns it into a Source that delivers chunks one at a time.
package transport

import (
	"net/http"

	"github.com/google/uuid"
)

// A Session describes one streamed document: where to fetch it and how.  It
// is not modified once created.
type Session struct {
	// ID identifies the session in logs.
	ID uuid.UUID

	// URL locates the document.  Supported schemes are http, https, ws,
	// wss and file.  A URL without a scheme is a file path and "-" means
	// standard input.
	URL string

	// Method is the HTTP method, GET by default.  Ignored by non-HTTP
	// sources.
	Method string

	// Header is sent with HTTP requests and the WebSocket handshake.
	Header http.Header
}

type SessionOption func(*Session)

// NewSession returns a Session for the given URL with a fresh ID.
func NewSession(url string, opts ...SessionOption) *Session {
	s := &Session{
		ID:     uuid.New(),
		URL:    url,
		Method: http.MethodGet,
		Header: http.Header{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithMethod(method string) SessionOption {
	return func(s *Session) {
		s.Method = method
	}
}

// WithHeader adds a header value, keeping existing values for the same key.
func WithHeader(key, value string) SessionOption {
	return func(s *Session) {
		s.Header.Add(key, value)
	}
}

func WithID(id uuid.UUID) SessionOption {
	return func(s *Session) {
		s.ID = id
	}
}

func (s *Session) String() string {
	return s.ID.String() + " " + s.URL
}

package transport

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
)

// FileOpener reads documents from local files.  The URL can be a file: URL, a
// plain path, or "-" for standard input.
type FileOpener struct{}

var _ Opener = FileOpener{}

func (FileOpener) Open(ctx context.Context, session *Session) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if session.URL == "-" {
		return NewReaderSource(io.NopCloser(os.Stdin)), nil
	}
	path := session.URL
	if u, err := url.Parse(session.URL); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %q: %w", path, err)
	}
	return NewReaderSource(f), nil
}

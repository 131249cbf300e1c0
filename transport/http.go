package transport

import (
	"context"
	"fmt"
	"net/http"
)

// HTTPOpener streams the body of an HTTP response.  The request is bound to
// the context passed to Open, so cancelling it aborts a pending read.
type HTTPOpener struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client

	// BufferSize is the maximum chunk size; 0 means the default size.
	BufferSize int
}

var _ Opener = &HTTPOpener{}

func (o *HTTPOpener) Open(ctx context.Context, session *Session) (Source, error) {
	method := session.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, session.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	req.Header = session.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	size := o.BufferSize
	if size <= 0 {
		size = defaultBufSize
	}
	return NewReaderSourceSize(resp.Body, size), nil
}

// A StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
}

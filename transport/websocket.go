package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/gorilla/websocket"
)

// WebSocketOpener receives a document as a sequence of WebSocket messages,
// each message being one chunk.  A normal close from the server ends the
// document.
type WebSocketOpener struct {
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

var _ Opener = &WebSocketOpener{}

func (o *WebSocketOpener) Open(ctx context.Context, session *Session) (Source, error) {
	dialer := o.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, session.URL, session.Header)
	if err != nil {
		if resp != nil && resp.StatusCode != 0 {
			return nil, fmt.Errorf("websocket handshake: %w", &StatusError{Code: resp.StatusCode, Status: resp.Status})
		}
		return nil, err
	}
	return &webSocketSource{conn: conn}, nil
}

type webSocketSource struct {
	conn    *websocket.Conn
	pending []byte
	err     error
}

func (s *webSocketSource) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	// ReadMessage does not take a context, closing the connection is the
	// only way to interrupt it.
	stop := context.AfterFunc(ctx, func() {
		s.conn.Close()
	})
	defer stop()
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				s.err = ctx.Err()
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				s.err = io.EOF
			default:
				s.err = err
			}
			if len(s.pending) > 0 {
				chunk := string(s.pending)
				s.pending = nil
				return chunk, nil
			}
			return "", s.err
		}
		data := append(s.pending, msg...)
		complete, rest := splitIncompleteRune(data)
		s.pending = append([]byte(nil), rest...)
		if len(complete) > 0 {
			return string(complete), nil
		}
	}
}

func (s *webSocketSource) Close() error {
	return s.conn.Close()
}

package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"

	"github.com/gorilla/websocket"
)

// readAll pulls every chunk from src until io.EOF.
func readAll(t *testing.T, src Source) []string {
	t.Helper()
	var chunks []string
	for {
		chunk, err := src.Next(context.Background())
		if err == io.EOF {
			return chunks
		}
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		chunks = append(chunks, chunk)
	}
}

func TestNewSession(t *testing.T) {
	s1 := NewSession("http://example.com", WithHeader("Accept", "application/json"), WithMethod(http.MethodPost))
	s2 := NewSession("http://example.com")
	if s1.ID == s2.ID {
		t.Errorf("sessions should have distinct IDs")
	}
	if s1.Method != http.MethodPost || s2.Method != http.MethodGet {
		t.Errorf("unexpected methods %q, %q", s1.Method, s2.Method)
	}
	if s1.Header.Get("Accept") != "application/json" {
		t.Errorf("header not set: %v", s1.Header)
	}
}

func TestChunkSource(t *testing.T) {
	src := NewChunkSource("[1", ",2]")
	if got := readAll(t, src); strings.Join(got, "|") != "[1|,2]" {
		t.Fatalf("unexpected chunks %q", got)
	}
	src.Close()
	if _, err := src.Next(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestReaderSourceKeepsRunesWhole(t *testing.T) {
	const doc = `{"greeting":"héllo 世界 😀"}`
	src := NewReaderSource(io.NopCloser(iotest.OneByteReader(strings.NewReader(doc))))
	chunks := readAll(t, src)
	for _, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %q splits a rune", chunk)
		}
	}
	if strings.Join(chunks, "") != doc {
		t.Fatalf("got %q", strings.Join(chunks, ""))
	}
}

func TestReaderSourceSmallBuffer(t *testing.T) {
	const doc = `["ééééé"]`
	src := NewReaderSourceSize(io.NopCloser(strings.NewReader(doc)), 5)
	chunks := readAll(t, src)
	for _, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %q splits a rune", chunk)
		}
	}
	if strings.Join(chunks, "") != doc {
		t.Fatalf("got %q", strings.Join(chunks, ""))
	}
}

func TestReaderSourceReportsReadError(t *testing.T) {
	boom := errors.New("boom")
	src := NewReaderSource(io.NopCloser(iotest.ErrReader(boom)))
	if _, err := src.Next(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	// The error sticks
	if _, err := src.Next(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom again, got %v", err)
	}
}

func TestReaderSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewReaderSource(io.NopCloser(strings.NewReader("[]")))
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPOpener(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		flusher := w.(http.Flusher)
		for _, part := range []string{`{"a":`, `[1,2`, `]}`} {
			io.WriteString(w, part)
			flusher.Flush()
		}
	}))
	defer server.Close()

	opener := &HTTPOpener{Client: server.Client()}

	t.Run("streams body", func(t *testing.T) {
		src, err := opener.Open(context.Background(), NewSession(server.URL, WithHeader("X-Token", "secret")))
		if err != nil {
			t.Fatalf("Open: %s", err)
		}
		defer src.Close()
		if got := strings.Join(readAll(t, src), ""); got != `{"a":[1,2]}` {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := opener.Open(context.Background(), NewSession(server.URL))
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 StatusError, got %v", err)
		}
	})
}

func TestWebSocketOpener(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, part := range []string{`[1,`, `"two"`, `]`} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(part)); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	src, err := DefaultOpener.Open(context.Background(), NewSession(wsURL))
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	defer src.Close()
	if got := readAll(t, src); strings.Join(got, "|") != `[1,|"two"|]` {
		t.Fatalf("unexpected chunks %q", got)
	}
}

func TestFileOpener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"x":true}`), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, u := range []string{path, "file://" + path} {
		src, err := Open(context.Background(), NewSession(u))
		if err != nil {
			t.Fatalf("Open(%q): %s", u, err)
		}
		if got := strings.Join(readAll(t, src), ""); got != `{"x":true}` {
			t.Errorf("got %q", got)
		}
		src.Close()
	}
	if _, err := Open(context.Background(), NewSession(filepath.Join(t.TempDir(), "missing"))); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestUnsupportedScheme(t *testing.T) {
	_, err := Open(context.Background(), NewSession("gopher://example.com"))
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestSplitIncompleteRune(t *testing.T) {
	tests := []struct {
		in, complete, rest string
	}{
		{"abc", "abc", ""},
		{"a\xc3", "a", "\xc3"},
		{"a\xc3\xa9", "a\xc3\xa9", ""},
		{"\xf0\x9f\x98", "", "\xf0\x9f\x98"},
		{"", "", ""},
	}
	for _, tt := range tests {
		complete, rest := splitIncompleteRune([]byte(tt.in))
		if string(complete) != tt.complete || string(rest) != tt.rest {
			t.Errorf("splitIncompleteRune(%q) = %q, %q", tt.in, complete, rest)
		}
	}
}

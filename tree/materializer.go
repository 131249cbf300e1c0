// Package tree builds a JSON value incrementally from a stream of tokens and
// publishes it as it grows.
package tree

import (
	"context"
	"fmt"
	"io"

	"github.com/arnodel/jsonlive/encoding/json"
	"github.com/arnodel/jsonlive/internal/fanout"
	"github.com/arnodel/jsonlive/token"
	"github.com/arnodel/jsonlive/transport"
	"github.com/arnodel/jsonlive/value"
)

// A Materializer owns a tokenizer and turns its tokens into a value.
//
// After each value is inserted and each container is closed, the root of
// the document is published to the OnPartial listeners.  The root is the
// same *value.Object or *value.Array every time and keeps being modified as
// more input arrives: listeners that need a stable copy must call
// value.Clone before returning.
type Materializer struct {
	tokenizer *json.Tokenizer

	stack         []value.Value
	pendingKey    string
	hasPendingKey bool
	root          value.Value

	partial fanout.List[func(value.Value)]
	end     fanout.List[func()]
	errors  fanout.List[func(error)]
}

var _ token.WriteStream = &Materializer{}

func New() *Materializer {
	m := &Materializer{}
	m.tokenizer = json.NewTokenizer(m)
	return m
}

// OnPartial registers f to be called with the root each time it changes.
func (m *Materializer) OnPartial(f func(root value.Value)) (remove func()) {
	return m.partial.Add(f)
}

// OnEnd registers f to be called when the input is complete.
func (m *Materializer) OnEnd(f func()) (remove func()) {
	return m.end.Add(f)
}

// OnError registers f to be called with syntax errors and transport errors.
func (m *Materializer) OnError(f func(err error)) (remove func()) {
	return m.errors.Add(f)
}

// Root returns the root of the document, or nil if nothing has been read yet.
func (m *Materializer) Root() value.Value {
	return m.root
}

// Depth returns the number of containers that are open.
func (m *Materializer) Depth() int {
	return len(m.stack)
}

// Write feeds a chunk of input to the tokenizer.  Listeners are called before
// Write returns.
func (m *Materializer) Write(chunk string) {
	m.tokenizer.Write(chunk)
}

// End signals the end of the input and notifies the OnEnd listeners.
func (m *Materializer) End() {
	m.tokenizer.Close()
	m.end.Each(func(f func()) { f() })
}

// Run reads chunks from src and writes them until src is exhausted, in which
// case it calls End and returns nil.  Any other error from src is published
// to the OnError listeners and returned as a *TransportError.
//
// Waiting for src is the only time Run blocks: all the listeners for a chunk
// have returned before the next chunk is requested.
func (m *Materializer) Run(ctx context.Context, src transport.Source) error {
	for {
		chunk, err := src.Next(ctx)
		if err == io.EOF {
			m.End()
			return nil
		}
		if err != nil {
			terr := &TransportError{Err: err}
			m.publishError(terr)
			return terr
		}
		m.Write(chunk)
	}
}

// Put applies a token to the document.  It is how the tokenizer talks to the
// Materializer, but tokens from elsewhere can be applied too.
func (m *Materializer) Put(tok token.Token) {
	switch t := tok.(type) {
	case *token.StartObject:
		obj := value.NewObject()
		m.open(obj)
		if t.HasKey {
			m.setPendingKey(t.Key)
		}
	case *token.StartArray:
		m.open(value.NewArray())
	case *token.Key:
		m.setPendingKey(t.Name)
	case *token.Scalar:
		if len(m.stack) == 0 {
			m.root = t.Value
		} else {
			m.insert(t.Value)
		}
		m.publishPartial()
	case *token.EndObject, *token.EndArray:
		if n := len(m.stack); n > 0 {
			m.stack = m.stack[:n-1]
		}
		m.clearPendingKey()
		m.publishPartial()
	case *token.Error:
		m.publishError(t.Err)
	default:
		panic(fmt.Sprintf("invalid token: %#v", tok))
	}
}

func (m *Materializer) open(container value.Value) {
	if len(m.stack) == 0 {
		m.root = container
	} else {
		m.insert(container)
	}
	m.stack = append(m.stack, container)
}

// insert adds v to the innermost container.  In an object, a value without
// a pending key is dropped.
func (m *Materializer) insert(v value.Value) {
	switch c := m.stack[len(m.stack)-1].(type) {
	case *value.Array:
		c.Append(v)
	case *value.Object:
		if m.hasPendingKey {
			c.Set(m.pendingKey, v)
			m.clearPendingKey()
		}
	}
}

func (m *Materializer) setPendingKey(key string) {
	m.pendingKey = key
	m.hasPendingKey = true
}

func (m *Materializer) clearPendingKey() {
	m.pendingKey = ""
	m.hasPendingKey = false
}

func (m *Materializer) publishPartial() {
	root := m.root
	m.partial.Each(func(f func(value.Value)) { f(root) })
}

func (m *Materializer) publishError(err error) {
	m.errors.Each(func(f func(error)) { f(err) })
}

// A TransportError wraps an error returned by the chunk source.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

package token

import (
	"fmt"

	"github.com/arnodel/jsonlive/value"
)

type WriteStream interface {
	Put(Token)
}

type AccumulatorStream struct {
	toks []Token
}

var _ WriteStream = &AccumulatorStream{}

func NewAccumulatorStream() *AccumulatorStream {
	return &AccumulatorStream{}
}

func (w *AccumulatorStream) Put(tok Token) {
	w.toks = append(w.toks, tok)
}

func (w *AccumulatorStream) GetTokens() []Token {
	return w.toks
}

// Reset forgets the tokens accumulated so far.
func (w *AccumulatorStream) Reset() {
	w.toks = nil
}

// Handlers dispatches each kind of token to its own callback.  All the
// callbacks are optional; tokens for which the callback is nil are dropped.
type Handlers struct {
	OpenObject  func(key string, hasKey bool)
	Key         func(name string)
	Value       func(v value.Value)
	CloseObject func()
	OpenArray   func()
	CloseArray  func()
	Error       func(err error)
}

var _ WriteStream = &Handlers{}

// Put calls the callback matching the type of tok.
func (h *Handlers) Put(tok Token) {
	switch t := tok.(type) {
	case *StartObject:
		if h.OpenObject != nil {
			h.OpenObject(t.Key, t.HasKey)
		}
	case *Key:
		if h.Key != nil {
			h.Key(t.Name)
		}
	case *Scalar:
		if h.Value != nil {
			h.Value(t.Value)
		}
	case *EndObject:
		if h.CloseObject != nil {
			h.CloseObject()
		}
	case *StartArray:
		if h.OpenArray != nil {
			h.OpenArray()
		}
	case *EndArray:
		if h.CloseArray != nil {
			h.CloseArray()
		}
	case *Error:
		if h.Error != nil {
			h.Error(t.Err)
		}
	default:
		panic(fmt.Sprintf("invalid token: %#v", tok))
	}
}

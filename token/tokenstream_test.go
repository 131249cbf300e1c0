package token

import (
	"errors"
	"testing"

	"github.com/arnodel/jsonlive/value"
)

func TestHandlersDispatch(t *testing.T) {
	var got []string
	h := &Handlers{
		OpenObject: func(key string, hasKey bool) {
			if hasKey {
				got = append(got, "{"+key)
			} else {
				got = append(got, "{")
			}
		},
		Key:         func(name string) { got = append(got, "key:"+name) },
		Value:       func(v value.Value) { got = append(got, "value:"+v.String()) },
		CloseObject: func() { got = append(got, "}") },
		OpenArray:   func() { got = append(got, "[") },
		CloseArray:  func() { got = append(got, "]") },
		Error:       func(err error) { got = append(got, "error:"+err.Error()) },
	}
	toks := []Token{
		&StartObject{},
		&Key{Name: "a"},
		NewStartArray(),
		&Scalar{Value: value.Number("1")},
		NewEndArray(),
		&StartObject{Key: "k", HasKey: true},
		NewEndObject(),
		&Error{Err: errors.New("boom")},
		NewEndObject(),
	}
	for _, tok := range toks {
		h.Put(tok)
	}
	want := []string{"{", "key:a", "[", "value:1", "]", "{k", "}", "error:boom", "}"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestHandlersAreOptional(t *testing.T) {
	var values int
	h := &Handlers{Value: func(value.Value) { values++ }}
	h.Put(&StartObject{})
	h.Put(&Key{Name: "x"})
	h.Put(&Scalar{Value: value.Null{}})
	h.Put(NewEndObject())
	h.Put(&Error{Err: errors.New("ignored")})
	if values != 1 {
		t.Fatalf("expected 1 value, got %d", values)
	}
}

func TestAccumulatorStream(t *testing.T) {
	acc := NewAccumulatorStream()
	acc.Put(NewStartArray())
	acc.Put(NewEndArray())
	if toks := acc.GetTokens(); len(toks) != 2 || toks[0] != NewStartArray() {
		t.Fatalf("unexpected tokens: %v", toks)
	}
	acc.Reset()
	if len(acc.GetTokens()) != 0 {
		t.Fatalf("expected no tokens after Reset")
	}
}

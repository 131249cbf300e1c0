package token

import (
	"fmt"

	"github.com/arnodel/jsonlive/value"
)

// A Token is a parse event produced by the tokenizer while it reads a JSON
// document.  For example, the JSON value
//
//	{"id": 123, "tags": ["important", "new"]}
//
// is represented by the sequence of Token (in pseudocode for clarity):
//
//	{            -> StartObject
//	"id":        -> Key("id")
//	123,         -> Scalar(123)
//	"tags":      -> Key("tags")
//	[            -> StartArray
//	"important", -> Scalar("important")
//	"new"        -> Scalar("new")
//	]            -> EndArray
//	}            -> EndObject
//
// Tokens are ephemeral: they are handed to a WriteStream as soon as they are
// recognised and are not retained by the tokenizer.
type Token interface {
	fmt.Stringer
}

// StartObject represents the start of a JSON object (introduced by '{').
// If HasKey is true, Key is the first key of the object, already known when
// the object was opened.
type StartObject struct {
	Key    string
	HasKey bool
}

func (s *StartObject) String() string {
	if s.HasKey {
		return fmt.Sprintf("StartObject(%q)", s.Key)
	}
	return "StartObject"
}

var _ Token = &StartObject{}

// EndObject represents the end of a JSON object (introduced by '}').
type EndObject struct{}

func (e *EndObject) String() string {
	return "EndObject"
}

var _ Token = &EndObject{}

// StartArray represents the start of a JSON array (introduced by '[').
type StartArray struct{}

func (s *StartArray) String() string {
	return "StartArray"
}

var _ Token = &StartArray{}

// EndArray represents the end of a JSON array (introduced by ']').
type EndArray struct{}

func (e *EndArray) String() string {
	return "EndArray"
}

var _ Token = &EndArray{}

// Key is an object key.  It is always followed by the value it labels,
// which can be a Scalar or the start of a collection.
type Key struct {
	Name string
}

func (k *Key) String() string {
	return fmt.Sprintf("Key(%q)", k.Name)
}

var _ Token = &Key{}

// Scalar carries a string, number, boolean or null value.
type Scalar struct {
	Value value.Value
}

func (s *Scalar) String() string {
	return fmt.Sprintf("Scalar(%s)", s.Value)
}

var _ Token = &Scalar{}

// Error reports a problem found while reading the input.  It does not end
// the stream: more tokens may follow.
type Error struct {
	Err error
}

func (e *Error) String() string {
	return fmt.Sprintf("Error(%s)", e.Err)
}

var _ Token = &Error{}

// Shared instances for the tokens that carry no data.
var (
	endObject  = &EndObject{}
	startArray = &StartArray{}
	endArray   = &EndArray{}
)

func NewEndObject() *EndObject   { return endObject }
func NewStartArray() *StartArray { return startArray }
func NewEndArray() *EndArray     { return endArray }

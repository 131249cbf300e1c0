// Package json tokenizes JSON text that arrives in chunks.
package json

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arnodel/jsonlive/internal/scanner"
	"github.com/arnodel/jsonlive/token"
	"github.com/arnodel/jsonlive/value"
)

// A Tokenizer turns JSON text delivered in arbitrary fragments into a stream
// of tokens.  Fragments do not need to align with token boundaries: a string,
// number or keyword split across several calls to Write is reassembled.
//
// The Tokenizer is lenient.  Separators (':' and ',') and whitespace are
// skipped, and brackets are not checked for balance.  Whether a string is a
// key or a value is decided from the innermost open container.
type Tokenizer struct {
	out    token.WriteStream
	scanr  *scanner.Scanner
	frames []frame
	closed bool
}

type frameKind uint8

const (
	objectFrame frameKind = iota
	arrayFrame
)

type frame struct {
	kind frameKind

	// For objects, true when a key has been read and its value is still
	// to come.
	afterKey bool
}

// NewTokenizer returns a Tokenizer which sends the tokens it reads to out.
// Use a *token.Handlers to receive them through callbacks.
func NewTokenizer(out token.WriteStream) *Tokenizer {
	return &Tokenizer{
		out:   out,
		scanr: scanner.NewScanner(),
	}
}

// Write feeds a chunk of input to the tokenizer.  All the tokens that can be
// completed with the input received so far are sent to the output before
// Write returns.  A token that is not complete yet is kept until the next
// call.
//
// Write never fails: problems in the input are sent as *token.Error values
// and scanning carries on after the offending byte.
func (t *Tokenizer) Write(chunk string) {
	if t.closed {
		t.out.Put(&token.Error{Err: ErrClosed})
		return
	}
	t.scanr.Append(chunk)
	t.drain()
}

// Close signals the end of the input.  A number at the very end of the input
// is only known to be complete at this point, so it is sent now.  Any other
// incomplete token is reported as an error.
func (t *Tokenizer) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.drain()
}

// Depth returns the number of containers currently open.
func (t *Tokenizer) Depth() int {
	return len(t.frames)
}

func (t *Tokenizer) drain() {
	for {
		tok, err := t.safeNext()
		if err != nil {
			t.out.Put(&token.Error{Err: err})
			continue
		}
		if tok == nil {
			break
		}
		t.out.Put(tok)
	}
	t.scanr.Compact()
}

// safeNext calls next, turning a panic into a syntax error.  The byte that
// started the failed token is skipped so that scanning makes progress.
// Panics raised by the output stream are not caught as they do not happen
// inside next.
func (t *Tokenizer) safeNext() (tok token.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			t.scanr.Rewind()
			t.scanr.Read()
			tok = nil
			err = t.syntaxError(fmt.Sprint(r))
		}
	}()
	return t.next()
}

// next returns the next complete token, or nil if more input is needed.  In
// the latter case the scanner is rewound to the start of the incomplete
// token.
func (t *Tokenizer) next() (token.Token, error) {
	for {
		t.scanr.Mark()
		b, ok := t.scanr.Read()
		if !ok {
			return nil, nil
		}
		switch {
		case b == '{':
			t.valueStarted()
			t.frames = append(t.frames, frame{kind: objectFrame})
			return &token.StartObject{}, nil
		case b == '}':
			t.pop()
			return token.NewEndObject(), nil
		case b == '[':
			t.valueStarted()
			t.frames = append(t.frames, frame{kind: arrayFrame})
			return token.NewStartArray(), nil
		case b == ']':
			t.pop()
			return token.NewEndArray(), nil
		case b == '"':
			s, complete, err := t.readString()
			if err != nil {
				return nil, err
			}
			if !complete {
				t.scanr.Rewind()
				return nil, nil
			}
			if t.expectingKey() {
				t.frames[len(t.frames)-1].afterKey = true
				return &token.Key{Name: s}, nil
			}
			t.valueStarted()
			return &token.Scalar{Value: value.String(s)}, nil
		case b == '-' || scanner.IsDigit(b):
			n, complete, err := t.readNumber()
			if err != nil {
				// The bad literal stands for the value
				t.valueStarted()
				return nil, err
			}
			if !complete {
				t.scanr.Rewind()
				return nil, nil
			}
			t.valueStarted()
			return &token.Scalar{Value: n}, nil
		case b == 't' || b == 'f' || b == 'n':
			v, complete, err := t.readKeyword(b)
			if err != nil {
				// The bad literal stands for the value
				t.valueStarted()
				return nil, err
			}
			if !complete {
				t.scanr.Rewind()
				return nil, nil
			}
			t.valueStarted()
			return &token.Scalar{Value: v}, nil
		default:
			// Separators, whitespace and stray bytes
		}
	}
}

func (t *Tokenizer) expectingKey() bool {
	n := len(t.frames)
	return n > 0 && t.frames[n-1].kind == objectFrame && !t.frames[n-1].afterKey
}

// valueStarted records that the value for the pending key, if any, has
// started.
func (t *Tokenizer) valueStarted() {
	if n := len(t.frames); n > 0 {
		t.frames[n-1].afterKey = false
	}
}

func (t *Tokenizer) pop() {
	if n := len(t.frames); n > 0 {
		t.frames = t.frames[:n-1]
	}
}

// readString reads the rest of a string whose opening quote has been read
// and returns it unescaped.  \u escapes are left as they are.
func (t *Tokenizer) readString() (string, bool, error) {
	var sb strings.Builder
	for {
		b, ok := t.scanr.Read()
		if !ok {
			return "", false, t.incomplete("unterminated string")
		}
		switch b {
		case '"':
			return sb.String(), true, nil
		case '\\':
			x, ok := t.scanr.Read()
			if !ok {
				return "", false, t.incomplete("unterminated string")
			}
			switch x {
			case '"', '\\', '/':
				sb.WriteByte(x)
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(x)
			}
		default:
			sb.WriteByte(b)
		}
	}
}

// readNumber reads the rest of a number literal.  A number that reaches the
// end of the buffered input may continue in the next chunk so it is only
// complete once followed by another byte, or after Close.
func (t *Tokenizer) readNumber() (value.Number, bool, error) {
	for {
		b, ok := t.scanr.Peek()
		if !ok {
			if !t.closed {
				return "", false, nil
			}
			break
		}
		if !scanner.IsNumberPart(b) {
			break
		}
		t.scanr.Read()
	}
	lit := string(t.scanr.Marked())
	if _, err := strconv.ParseFloat(lit, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", false, t.syntaxError(fmt.Sprintf("invalid number literal %q", lit))
	}
	return value.Number(lit), true, nil
}

// readKeyword reads true, false or null, whose first byte has been read.
func (t *Tokenizer) readKeyword(first byte) (value.Value, bool, error) {
	var kw string
	var v value.Value
	switch first {
	case 't':
		kw, v = "true", value.Bool(true)
	case 'f':
		kw, v = "false", value.Bool(false)
	default:
		kw, v = "null", value.Null{}
	}
	for i := 1; i < len(kw); i++ {
		b, ok := t.scanr.Read()
		if !ok {
			return nil, false, t.incomplete("truncated literal")
		}
		if b != kw[i] {
			// Only skip the first byte, the rest is scanned again.
			t.scanr.Rewind()
			t.scanr.Read()
			return nil, false, t.syntaxError(fmt.Sprintf("invalid literal, expected %q", kw))
		}
	}
	return v, true, nil
}

// incomplete is called when the input runs out in the middle of a token.
// Before Close this just means waiting for more input; after Close it is
// an error and the rest of the input is dropped.
func (t *Tokenizer) incomplete(msg string) error {
	if !t.closed {
		return nil
	}
	for {
		if _, ok := t.scanr.Read(); !ok {
			break
		}
	}
	return t.syntaxError("unexpected end of input: " + msg)
}

// ErrClosed is reported when Write is called after Close.
var ErrClosed = errors.New("write on closed tokenizer")

// A SyntaxError describes a problem in the input and where it was found.
// Line and Col are 1-based, Offset is the number of bytes before the start of
// the offending token.
type SyntaxError struct {
	Line   int
	Col    int
	Offset int
	Msg    string
}

// syntaxError reports msg at the start of the current token.
func (t *Tokenizer) syntaxError(msg string) *SyntaxError {
	pos := t.scanr.MarkPos()
	return &SyntaxError{Line: pos.Line + 1, Col: pos.Col + 1, Offset: t.scanr.MarkOffset(), Msg: msg}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at L%d,C%d: %s", e.Line, e.Col, e.Msg)
}

// Package format prints JSON values for humans, with optional indentation
// and terminal colors.
package format

import (
	"fmt"

	"github.com/arnodel/jsonlive/value"
)

// An Encoder outputs JSON values using the given Printer instance for
// formatting.
type Encoder struct {
	Printer
	*Colorizer
	CompactWidthLimit     int
	CompactObjectMaxItems int
}

// Encode prints v followed by a new line.  A nil v is printed as null.
//
// An error can be returned if the Printer could not perform some writing
// operation.  A typical example is if it attempts to write to a closed pipe.
func (e *Encoder) Encode(v value.Value) (err error) {
	defer CatchPrinterError(&err)
	e.writeValue(v)
	e.Printer.Reset()
	return nil
}

func (e *Encoder) writeValue(v value.Value) {
	switch x := v.(type) {
	case nil:
		e.Colorizer.PrintScalar(e.Printer, value.Null{})
	case value.Null, value.Bool, value.Number, value.String:
		e.Colorizer.PrintScalar(e.Printer, x)
	case *value.Object:
		if e.CompactObjectMaxItems > 0 {
			e.writeObjectCompact(x)
		} else {
			e.writeObject(x)
		}
	case *value.Array:
		if e.CompactWidthLimit > 0 {
			e.writeArrayCompact(x)
		} else {
			e.writeArray(x)
		}
	default:
		panic(fmt.Sprintf("invalid value: %#v", v))
	}
}

func (e *Encoder) writeKeyValue(key string, v value.Value) {
	e.Colorizer.PrintKey(e.Printer, key)
	e.PrintBytes(keyValueSeparatorBytes)
	e.writeValue(v)
}

func (e *Encoder) writeObject(obj *value.Object) {
	e.PrintBytes(openObjectBytes)
	firstItem := true
	obj.Range(func(key string, v value.Value) bool {
		if !firstItem {
			e.PrintBytes(itemSeparatorBytes)
			e.NewLine()
		} else {
			e.Indent()
			firstItem = false
		}
		e.writeKeyValue(key, v)
		return true
	})
	if !firstItem {
		e.Dedent()
	}
	e.PrintBytes(closeObjectBytes)
}

// writeObjectCompact prints small objects of scalars on one line.
func (e *Encoder) writeObjectCompact(obj *value.Object) {
	compact := obj.Len() <= e.CompactObjectMaxItems
	totalWidth := -2
	obj.Range(func(key string, v value.Value) bool {
		if isContainer(v) {
			compact = false
			return false
		}
		totalWidth += len(value.String(key).String()) + len(v.String()) + 4 // 4 for ": " and ", "
		compact = totalWidth <= e.CompactWidthLimit
		return compact
	})
	if !compact {
		e.writeObject(obj)
		return
	}
	e.PrintBytes(openObjectBytes)
	first := true
	obj.Range(func(key string, v value.Value) bool {
		if !first {
			e.PrintBytes(compactItemSeparatorBytes)
		}
		first = false
		e.writeKeyValue(key, v)
		return true
	})
	e.PrintBytes(closeObjectBytes)
}

func (e *Encoder) writeArray(arr *value.Array) {
	e.PrintBytes(openArrayBytes)
	firstItem := true
	arr.Range(func(_ int, v value.Value) bool {
		if !firstItem {
			e.PrintBytes(itemSeparatorBytes)
			e.NewLine()
		} else {
			e.Indent()
			firstItem = false
		}
		e.writeValue(v)
		return true
	})
	if !firstItem {
		e.Dedent()
	}
	e.PrintBytes(closeArrayBytes)
}

// Group together small scalar items up to a certain size
// E.g. with CompactWidthLimit = 20
//
//	[1, 2, 3, 4]
//
//	[
//	  "si", "par", "une",
//	  "nuit", "d'hiver",
//	  "un", "voyageur"
//	]
//
//	[
//	  1, 2, 3, 4,
//	  [5, 6, 7],
//	  8, 9, 10, 11, 12
//	]
func (e *Encoder) writeArrayCompact(arr *value.Array) {
	if arr.Len() == 0 {
		e.PrintBytes(openArrayBytes)
		e.PrintBytes(closeArrayBytes)
		return
	}

	// All scalars fitting on one line
	oneLine := true
	totalWidth := -2
	arr.Range(func(_ int, v value.Value) bool {
		if isContainer(v) {
			oneLine = false
			return false
		}
		totalWidth += len(v.String()) + 2
		oneLine = totalWidth <= e.CompactWidthLimit
		return oneLine
	})
	if oneLine {
		e.PrintBytes(openArrayBytes)
		e.writeCompactItems(arr, 0, arr.Len())
		e.PrintBytes(closeArrayBytes)
		return
	}

	e.PrintBytes(openArrayBytes)
	e.Indent()
	start := -1 // start of the current run of compact items
	totalWidth = -2
	flush := func(end int) {
		if start >= 0 {
			e.writeCompactItems(arr, start, end)
			start = -1
			totalWidth = -2
		}
	}
	separate := func(i int) {
		if i > 0 {
			e.PrintBytes(itemSeparatorBytes)
			e.NewLine()
		}
	}
	arr.Range(func(i int, v value.Value) bool {
		if isContainer(v) {
			if start >= 0 {
				separate(start)
				flush(i)
			}
			separate(i)
			e.writeValue(v)
			return true
		}
		width := len(v.String()) + 2
		if start >= 0 && totalWidth+width > e.CompactWidthLimit {
			separate(start)
			flush(i)
		}
		if start < 0 {
			start = i
		}
		totalWidth += width
		return true
	})
	if start >= 0 {
		separate(start)
		flush(arr.Len())
	}
	e.Dedent()
	e.PrintBytes(closeArrayBytes)
}

func (e *Encoder) writeCompactItems(arr *value.Array, start, end int) {
	for i := start; i < end; i++ {
		if i > start {
			e.PrintBytes(compactItemSeparatorBytes)
		}
		e.writeValue(arr.At(i))
	}
}

func isContainer(v value.Value) bool {
	switch v.(type) {
	case *value.Object, *value.Array:
		return true
	}
	return false
}

var (
	openObjectBytes           = []byte("{")
	closeObjectBytes          = []byte("}")
	openArrayBytes            = []byte("[")
	closeArrayBytes           = []byte("]")
	itemSeparatorBytes        = []byte(",")
	compactItemSeparatorBytes = []byte(", ")
	keyValueSeparatorBytes    = []byte(": ")
)

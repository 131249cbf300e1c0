package format

import "github.com/arnodel/jsonlive/value"

// Indexes into Colorizer.ScalarColorCodes.
const (
	NullColor = iota
	StringColor
	NumberColor
	BoolColor
)

// A Colorizer surrounds keys and scalars with terminal escape codes.  A nil
// *Colorizer prints everything without color.
type Colorizer struct {
	KeyColorCode     []byte
	ScalarColorCodes [4][]byte
	ResetCode        []byte
}

// ScalarColorCode returns the color code for v, which must be a scalar.
func (c *Colorizer) ScalarColorCode(v value.Value) []byte {
	switch v.(type) {
	case value.String:
		return c.ScalarColorCodes[StringColor]
	case value.Number:
		return c.ScalarColorCodes[NumberColor]
	case value.Bool:
		return c.ScalarColorCodes[BoolColor]
	default:
		return c.ScalarColorCodes[NullColor]
	}
}

func (c *Colorizer) PrintScalar(p Printer, v value.Value) {
	if c != nil {
		p.PrintBytes(c.ScalarColorCode(v))
	}
	p.PrintBytes([]byte(v.String()))
	if c != nil {
		p.PrintBytes(c.ResetCode)
	}
}

func (c *Colorizer) PrintKey(p Printer, key string) {
	if c != nil {
		p.PrintBytes(c.KeyColorCode)
	}
	p.PrintBytes([]byte(value.String(key).String()))
	if c != nil {
		p.PrintBytes(c.ResetCode)
	}
}

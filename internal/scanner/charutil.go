package scanner

func IsDigit[T byte | rune](b T) bool {
	return b >= '0' && b <= '9'
}

// IsNumberPart reports whether b may appear in a JSON number literal.  The
// literal is only validated once complete.
func IsNumberPart[T byte | rune](b T) bool {
	return IsDigit(b) || b == '-' || b == '+' || b == '.' || b == 'e' || b == 'E'
}

// Package fanout keeps lists of callbacks that can be removed individually.
package fanout

// List is an ordered list of callbacks of type F.  The zero value is an empty
// list ready to use.  It is not safe for concurrent use.
type List[F any] struct {
	entries []entry[F]
	lastID  uint64
}

type entry[F any] struct {
	id uint64
	f  F
}

// Add appends f to the list and returns a function that removes it.  Calling
// the returned function more than once is harmless.
func (l *List[F]) Add(f F) (remove func()) {
	l.lastID++
	id := l.lastID
	l.entries = append(l.entries, entry[F]{id: id, f: f})
	return func() {
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

// Each calls call with every callback in the order they were added.
// Callbacks added or removed by call take effect from the next Each.
func (l *List[F]) Each(call func(F)) {
	for _, e := range l.entries {
		call(e.f)
	}
}

func (l *List[F]) Len() int {
	return len(l.entries)
}

// Funcs returns a copy of the callbacks, so they can be called after
// releasing a lock that guards the list.
func (l *List[F]) Funcs() []F {
	funcs := make([]F, len(l.entries))
	for i, e := range l.entries {
		funcs[i] = e.f
	}
	return funcs
}

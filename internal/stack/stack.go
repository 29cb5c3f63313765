// Package stack provides the growable stacks that back the parser's
// open-element and namespace-scope bookkeeping. Popping shrinks the
// backing array once it is mostly unused, so a single deeply nested
// section does not pin memory for the rest of a long stream.
package stack

type Stack[T any] []T

func (s *Stack[T]) Push(v T) {
	*s = append(*s, v)
}

// Pop removes and returns the top item. The second return value is false
// if the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	l := len(*s)
	if l == 0 {
		return zero, false
	}
	v := (*s)[l-1]
	(*s)[l-1] = zero
	*s = (*s)[:l-1]
	if c := cap(*s); c > 20 && c > len(*s)*2 {
		s.Realloc()
	}
	return v, true
}

// Peek returns the top item without removing it.
func (s Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s) == 0 {
		return zero, false
	}
	return s[len(s)-1], true
}

// At returns the item at depth i, where 0 is the bottom of the stack.
func (s Stack[T]) At(i int) T {
	return s[i]
}

func (s Stack[T]) Len() int {
	return len(s)
}

func (s Stack[T]) Cap() int {
	return cap(s)
}

func (s *Stack[T]) Realloc() {
	*s = append(Stack[T](nil), *s...)
}

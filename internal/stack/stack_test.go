package stack_test

import (
	"testing"

	"github.com/lestrrat-go/strictxml/internal/stack"
	"github.com/stretchr/testify/require"
)

func TestStackBasics(t *testing.T) {
	var s stack.Stack[int]

	_, ok := s.Pop()
	require.False(t, ok, "empty stack has nothing to pop")
	_, ok = s.Peek()
	require.False(t, ok, "empty stack has nothing to peek")

	for i := 0; i < 5; i++ {
		s.Push(i)
	}
	require.Equal(t, 5, s.Len())

	top, ok := s.Peek()
	require.True(t, ok)
	require.Equal(t, 4, top)
	require.Equal(t, 5, s.Len(), "peek does not remove")

	require.Equal(t, 0, s.At(0), "At(0) is the bottom")

	for i := 4; i >= 0; i-- {
		v, ok := s.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.Equal(t, 0, s.Len())
}

func TestStackShrinks(t *testing.T) {
	var s stack.Stack[int]
	for i := 0; i < 1000; i++ {
		s.Push(i)
	}
	grown := s.Cap()

	for i := 0; i < 990; i++ {
		s.Pop()
	}
	require.Less(t, s.Cap(), grown, "deep excursions should not pin capacity")
	require.Equal(t, 10, s.Len())

	v, ok := s.Peek()
	require.True(t, ok)
	require.Equal(t, 9, v, "contents survive reallocation")
}

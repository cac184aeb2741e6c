package stack

import "errors"

// ErrOverflow is returned by Push on a bounded stack that is full.
var ErrOverflow = errors.New("stack overflow")

// Stack is a LIFO stack with an optional depth limit.
type Stack[T any] struct {
	items []T
	limit int
}

// NewBounded returns a stack holding at most limit items. A limit of 0 or
// less means unbounded.
func NewBounded[T any](limit int) *Stack[T] {
	return &Stack[T]{limit: limit}
}

// Push adds item on top. On a full bounded stack the item is dropped and
// ErrOverflow returned.
func (s *Stack[T]) Push(item T) error {
	if s.limit > 0 && len(s.items) >= s.limit {
		return ErrOverflow
	}
	s.items = append(s.items, item)
	return nil
}

func (s *Stack[T]) Pop() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}

	index := len(s.items) - 1
	item := s.items[index]
	s.items = s.items[:index]
	return item, true
}

// Limit returns the depth limit, 0 when unbounded.
func (s *Stack[T]) Limit() int {
	return s.limit
}


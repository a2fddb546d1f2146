package types

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Set keeps insertion order so catalogs and primary keys serialise deterministically.
type Set[T comparable] struct {
	index map[T]struct{}
	items []T
}

func NewSet[T comparable](values ...T) *Set[T] {
	set := &Set[T]{index: make(map[T]struct{})}
	set.Insert(values...)
	return set
}

func (s *Set[T]) Insert(values ...T) {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	for _, value := range values {
		if _, found := s.index[value]; found {
			continue
		}
		s.index[value] = struct{}{}
		s.items = append(s.items, value)
	}
}

func (s *Set[T]) Exists(value T) bool {
	if s == nil {
		return false
	}
	_, found := s.index[value]
	return found
}

func (s *Set[T]) Remove(value T) {
	if !s.Exists(value) {
		return
	}
	delete(s.index, value)
	for idx, item := range s.items {
		if item == value {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			break
		}
	}
}

func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Array returns a copy of the elements in insertion order.
func (s *Set[T]) Array() []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Difference returns the elements of s missing from other.
func (s *Set[T]) Difference(other *Set[T]) *Set[T] {
	diff := NewSet[T]()
	for _, item := range s.Array() {
		if !other.Exists(item) {
			diff.Insert(item)
		}
	}
	return diff
}

func (s *Set[T]) IsSubsetOf(other *Set[T]) bool {
	return s.Difference(other).Len() == 0
}

func (s *Set[T]) String() string {
	return fmt.Sprintf("%v", s.Array())
}

func (s *Set[T]) MarshalJSON() ([]byte, error) {
	items := s.Array()
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	s.index = make(map[T]struct{})
	s.items = nil
	s.Insert(items...)
	return nil
}

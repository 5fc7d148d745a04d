package rbtree

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"reflect"
)

var (
	// ErrInvalidKey is returned when a key cannot be stored or looked up: a nil
	// reference, a NaN under the natural order, or a key refused by the
	// validator installed with WithKeyValidator.
	ErrInvalidKey = errors.New("invalid key")

	// ErrIncomparableKey is returned when a tree has no comparator and the key
	// type has no natural order.
	ErrIncomparableKey = errors.New("key has no natural order")

	// ErrInvariant is returned by Verify when the tree violates a red-black or
	// search-tree invariant.
	ErrInvariant = errors.New("red-black invariant violated")
)

// Comparator defines a total order over keys: negative when a sorts before b,
// zero when they are equal, positive otherwise.
type Comparator[K any] func(a, b K) int

// Comparable is implemented by keys that carry their own natural order.
type Comparable[K any] interface {
	Compare(other K) int
}

type compareFunc[K any] func(a, b K) (int, error)

func fromComparator[K any](comparator Comparator[K]) compareFunc[K] {
	return func(a, b K) (int, error) {
		return comparator(a, b), nil
	}
}

// naturalCompare resolves the natural order of the dynamic key values.
func naturalCompare[K any](a, b K) (int, error) {
	if self, ok := any(a).(Comparable[K]); ok {
		return self.Compare(b), nil
	}

	switch x := any(a).(type) {
	case int:
		if y, ok := any(b).(int); ok {
			return cmp.Compare(x, y), nil
		}
	case string:
		if y, ok := any(b).(string); ok {
			return cmp.Compare(x, y), nil
		}
	}

	return reflectCompare(any(a), any(b))
}

func reflectCompare(a, b any) (int, error) {
	left, right := reflect.ValueOf(a), reflect.ValueOf(b)
	if !left.IsValid() || !right.IsValid() || left.Kind() != right.Kind() {
		return 0, fmt.Errorf("%w: cannot compare %T with %T", ErrIncomparableKey, a, b)
	}

	switch left.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(left.Int(), right.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(left.Uint(), right.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(left.Float(), right.Float()), nil
	case reflect.String:
		return cmp.Compare(left.String(), right.String()), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrIncomparableKey, a)
	}
}

// checkKey rejects keys that can never take part in a comparison.
func (tree *Tree[K, V]) checkKey(key K) error {
	value := reflect.ValueOf(any(key))
	if !value.IsValid() {
		return fmt.Errorf("%w: nil key", ErrInvalidKey)
	}

	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan,
		reflect.Interface, reflect.UnsafePointer:
		if value.IsNil() {
			return fmt.Errorf("%w: nil %T", ErrInvalidKey, key)
		}
	case reflect.Float32, reflect.Float64:
		if tree.natural && math.IsNaN(value.Float()) {
			return fmt.Errorf("%w: NaN has no natural order", ErrInvalidKey)
		}
	default:
	}

	if tree.validate != nil {
		if err := tree.validate(key); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}
	}

	return nil
}

// Tagged container: a closed sum of Present(T) and Absent.
package types

import "fmt"

// Variant identifies which arm of a Container is active.
type Variant uint8

// Container variants. VariantAbsent is the zero value so that a zero
// Container is a valid Absent.
const (
	VariantAbsent Variant = iota
	VariantPresent
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantAbsent:
		return "absent"
	case VariantPresent:
		return "present"
	default:
		return "?"
	}
}

// Container holds either a present value of type T or nothing.
// Container values are immutable; the only way to reach the payload is Match
// or Get, both of which force the caller to handle Absent.
type Container[T any] struct {
	variant Variant
	value   T
}

// Present constructs a Container holding v.
func Present[T any](v T) Container[T] {
	return Container[T]{variant: VariantPresent, value: v}
}

// Absent constructs an empty Container.
func Absent[T any]() Container[T] {
	return Container[T]{}
}

// Variant reports the active arm.
func (c Container[T]) Variant() Variant {
	return c.variant
}

// IsPresent reports whether c holds a value.
func (c Container[T]) IsPresent() bool {
	return c.variant == VariantPresent
}

// Get returns the payload and true when c is Present, or the zero T and false.
func (c Container[T]) Get() (T, bool) {
	if c.variant != VariantPresent {
		var zero T
		return zero, false
	}
	return c.value, true
}

// OrElse returns the payload, or fallback when c is Absent.
func (c Container[T]) OrElse(fallback T) T {
	if c.variant != VariantPresent {
		return fallback
	}
	return c.value
}

// String formats c as Present(v) or Absent.
func (c Container[T]) String() string {
	if c.variant == VariantPresent {
		return fmt.Sprintf("Present(%v)", c.value)
	}
	return "Absent"
}

// Match consumes c and runs exactly one arm. Both arms are required
// positional arguments, so a call site that forgets a variant does not
// compile. Passing a nil arm is a programming error and panics.
func Match[T, R any](c Container[T], onPresent func(T) R, onAbsent func() R) R {
	if onPresent == nil || onAbsent == nil {
		panic("types.Match: every variant needs an arm")
	}
	if c.variant == VariantPresent {
		return onPresent(c.value)
	}
	return onAbsent()
}

// MatchOwned moves the container out of b and matches on it. After a
// successful call b is in StateMoved.
func MatchOwned[T, R any](b *Binding[Container[T]], onPresent func(T) R, onAbsent func() R) (R, error) {
	c, err := b.Take()
	if err != nil {
		var zero R
		return zero, err
	}
	return Match(c, onPresent, onAbsent), nil
}

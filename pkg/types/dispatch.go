// Capability dispatch over generic containers.
package types

// Transformer is a capability that consumes its receiver and yields a
// Container of U.
type Transformer[U any] interface {
	Transform() Container[U]
}

// Wrapper is a generic single-field holder. It implements Transformer[T]
// once for every T.
type Wrapper[T any] struct {
	Value T
}

// Compile-time checks that both generic types satisfy the capability.
var (
	_ Transformer[int] = Wrapper[int]{}
	_ Transformer[int] = Container[int]{}
)

// Wrap builds a Wrapper around v.
func Wrap[T any](v T) Wrapper[T] {
	return Wrapper[T]{Value: v}
}

// Into consumes the wrapper and returns the held value.
func (w Wrapper[T]) Into() T {
	return w.Value
}

// Transform returns Present of the held value.
func (w Wrapper[T]) Transform() Container[T] {
	return Present(w.Value)
}

// Transform returns a freshly constructed container with the same variant
// and payload.
func (c Container[T]) Transform() Container[T] {
	if c.variant == VariantPresent {
		return Present(c.value)
	}
	return Absent[T]()
}

// Dispatch moves the receiver out of b and invokes its Transform. The
// implementation is chosen by X's static type; there is no runtime type
// inspection. Fails only when b no longer owns a value or is borrowed.
func Dispatch[U any, X Transformer[U]](b *Binding[X]) (Container[U], error) {
	x, err := b.Take()
	if err != nil {
		return Absent[U](), err
	}
	return x.Transform(), nil
}

// Map applies fn to a present payload and returns a new container of U.
// Absent maps to Absent.
func Map[T, U any](c Container[T], fn func(T) U) Container[U] {
	return Match(c,
		func(v T) Container[U] { return Present(fn(v)) },
		func() Container[U] { return Absent[U]() },
	)
}

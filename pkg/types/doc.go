// Package types defines the tagged Container, the runtime-checked ownership
// protocol (Binding, Ref, MutRef, Scope), the Transformer capability, and the
// Journal interface with its standard errors.
//
// Go has no borrow checker. Conflicts that a compiler with one would reject
// are reported here at the call site as sentinel errors, and the rejected
// operation leaves the binding unchanged.
package types

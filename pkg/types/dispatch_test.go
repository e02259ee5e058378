package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapper_Transform(t *testing.T) {
	got := Wrap(1).Transform()
	v, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Equal(t, "bar", Wrap("bar").Into())
}

func TestContainer_TransformIsIdentityShaped(t *testing.T) {
	for _, v := range []int{0, 1, 99} {
		got := Present(v).Transform()
		assert.Equal(t, Present(v), got)
	}
	assert.Equal(t, Absent[string](), Absent[string]().Transform())
}

func TestDispatch_MovesReceiver(t *testing.T) {
	anotherFoo := Own(Wrap(1), WithName("another_foo"))

	got, err := Dispatch[int](anotherFoo)
	require.NoError(t, err)
	assert.Equal(t, Present(1), got)
	assert.Equal(t, StateMoved, anotherFoo.State())

	_, err = Dispatch[int](anotherFoo)
	assert.ErrorIs(t, err, ErrMoved)
}

func TestDispatch_Container(t *testing.T) {
	b := Own(Present("x"))
	got, err := Dispatch[string](b)
	require.NoError(t, err)
	assert.Equal(t, Present("x"), got)

	empty := Own(Absent[float64]())
	got2, err := Dispatch[float64](empty)
	require.NoError(t, err)
	assert.False(t, got2.IsPresent())
}

func TestDispatch_ResultIndependentOfInput(t *testing.T) {
	data := []int{1, 2}
	b := Own(Wrap(data))
	got, err := Dispatch[[]int](b)
	require.NoError(t, err)

	// The input binding no longer holds anything; the result carries the value.
	assert.Equal(t, StateMoved, b.State())
	v, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, data, v)
}

func TestDispatch_RejectedWhileBorrowed(t *testing.T) {
	b := Own(Wrap(1))
	m, err := b.BorrowMut()
	require.NoError(t, err)

	_, err = Dispatch[int](b)
	assert.ErrorIs(t, err, ErrExclusiveBorrow)

	m.Release()
	_, err = Dispatch[int](b)
	assert.NoError(t, err)
}

func TestMap(t *testing.T) {
	assert.Equal(t, Present("4"), Map(Present(4), func(n int) string { return "4" }))
	assert.Equal(t, Absent[string](), Map(Absent[int](), func(n int) string { return "never" }))
}

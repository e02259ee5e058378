package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namedCloser appends its name to a shared log on Close.
type namedCloser struct {
	name string
	log  *[]string
}

func (c namedCloser) Close() error {
	*c.log = append(*c.log, c.name)
	return nil
}

func TestScope_ReverseOrder(t *testing.T) {
	var released []string
	s := NewScope(ScopeName("main"))
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, s.Defer(name, func() error {
			released = append(released, name)
			return nil
		}))
	}
	assert.Equal(t, 3, s.Len())

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"c", "b", "a"}, released)

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"c", "b", "a"}, released)
	assert.Equal(t, 0, s.Len())
}

func TestScope_DeferAfterClose(t *testing.T) {
	s := NewScope()
	require.NoError(t, s.Close())
	err := s.Defer("late", func() error { return nil })
	assert.ErrorIs(t, err, ErrScopeClosed)
}

func TestScope_JoinsReleaseErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ran := 0

	s := NewScope(ScopeName("io"))
	require.NoError(t, s.Defer("a", func() error { ran++; return errA }))
	require.NoError(t, s.Defer("ok", func() error { ran++; return nil }))
	require.NoError(t, s.Defer("b", func() error { ran++; return errB }))

	err := s.Close()
	assert.Equal(t, 3, ran)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Contains(t, err.Error(), "release b in io")
}

func TestRunScope_ReleasesOnEveryExitPath(t *testing.T) {
	tests := []struct {
		name    string
		body    func(s *Scope) error
		wantErr error
		panics  bool
	}{
		{
			name: "normal return",
			body: func(s *Scope) error { return nil },
		},
		{
			name:    "early error return",
			body:    func(s *Scope) error { return errEarly },
			wantErr: errEarly,
		},
		{
			name:   "panic",
			body:   func(s *Scope) error { panic("propagated failure") },
			panics: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var released []string
			run := func() error {
				return RunScope(func(s *Scope) error {
					first, err := OwnIn(s, namedCloser{name: "first", log: &released})
					require.NoError(t, err)
					_, err = OwnIn(s, namedCloser{name: "second", log: &released})
					require.NoError(t, err)
					assert.Equal(t, StateOwned, first.State())
					return tt.body(s)
				})
			}

			if tt.panics {
				assert.Panics(t, func() { _ = run() })
			} else {
				err := run()
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.NoError(t, err)
				}
			}
			assert.Equal(t, []string{"second", "first"}, released)
		})
	}
}

var errEarly = fmt.Errorf("early exit")

func TestOwnIn_MovedOutIsNotReleased(t *testing.T) {
	var released []string
	var escaped *Binding[namedCloser]

	err := RunScope(func(s *Scope) error {
		inner, err := OwnIn(s, namedCloser{name: "inner", log: &released})
		if err != nil {
			return err
		}
		v, err := inner.Take()
		if err != nil {
			return err
		}
		escaped = Own(v)
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, released)

	require.NoError(t, escaped.Drop())
	assert.Equal(t, []string{"inner"}, released)
}

func TestOwnIn_MoveStaysInScope(t *testing.T) {
	var released []string
	s := NewScope()
	mine, err := OwnIn(s, namedCloser{name: "box", log: &released}, WithName("mine"))
	require.NoError(t, err)

	now, err := mine.Move(WithName("now_its_mine"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"box"}, released)
	assert.Equal(t, StateDropped, now.State())
	assert.Equal(t, StateMoved, mine.State())
}

func TestOwnIn_ClosedScope(t *testing.T) {
	s := NewScope()
	require.NoError(t, s.Close())

	b, err := OwnIn(s, 1)
	assert.ErrorIs(t, err, ErrScopeClosed)
	require.NotNil(t, b)
	assert.Equal(t, StateOwned, b.State())
}

func TestOwnIn_InheritsScopeObserver(t *testing.T) {
	rec := &Recorder{}
	err := RunScope(func(s *Scope) error {
		b, err := OwnIn(s, 1, WithName("n"))
		if err != nil {
			return err
		}
		return b.Set(2)
	}, ScopeObserver(rec))
	require.NoError(t, err)
	assert.Equal(t, []string{OpOwn, OpSet, OpDrop}, rec.Ops())
}

func TestOwnIn_SharedBorrowOutlivesScope(t *testing.T) {
	var released []string
	var b *Binding[namedCloser]
	var r1, r2 *Ref[namedCloser]

	err := RunScope(func(s *Scope) error {
		var err error
		b, err = OwnIn(s, namedCloser{name: "box", log: &released})
		require.NoError(t, err)
		r1, err = b.Borrow()
		require.NoError(t, err)
		r2, err = b.Borrow()
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, released)
	assert.Equal(t, StateShared, b.State())

	require.NoError(t, r1.Release())
	assert.Empty(t, released)
	assert.Equal(t, StateShared, b.State())

	require.NoError(t, r2.Release())
	assert.Equal(t, []string{"box"}, released)
	assert.Equal(t, StateDropped, b.State())

	require.NoError(t, r2.Release())
	require.NoError(t, b.Drop())
	assert.Equal(t, []string{"box"}, released)
}

func TestOwnIn_ExclusiveBorrowOutlivesScope(t *testing.T) {
	closes := 0
	rec := &Recorder{}
	var b *Binding[closer]
	var m *MutRef[closer]

	err := RunScope(func(s *Scope) error {
		var err error
		b, err = OwnIn(s, closer{closes: &closes}, WithName("held"))
		require.NoError(t, err)
		m, err = b.BorrowMut()
		return err
	}, ScopeObserver(rec))
	require.NoError(t, err)
	assert.Equal(t, 0, closes)

	require.NoError(t, m.Release())
	assert.Equal(t, 1, closes)
	assert.Equal(t, StateDropped, b.State())
	assert.Equal(t, []string{OpOwn, OpBorrowMut, OpReleaseMut, OpDrop}, rec.Ops())
}

func TestWithRef_ReportsPendingDropError(t *testing.T) {
	errClose := errors.New("close failed")
	closes := 0
	s := NewScope()
	b, err := OwnIn(s, closer{closes: &closes, err: errClose})
	require.NoError(t, err)

	err = WithRef(b, func(r *Ref[closer]) error {
		return s.Close()
	})
	assert.ErrorIs(t, err, errClose)
	assert.Equal(t, 1, closes)
	assert.Equal(t, StateDropped, b.State())
}

func TestBinding_MoveIntoClosedScopeRejected(t *testing.T) {
	rec := &Recorder{}
	s := NewScope()
	require.NoError(t, s.Close())

	b := Own(7, WithName("late"), WithObserver(rec))
	b.scope = s

	next, err := b.Move()
	assert.ErrorIs(t, err, ErrScopeClosed)
	assert.Nil(t, next)
	assert.Equal(t, StateOwned, b.State())
	v, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	trs := rec.Transitions()
	require.Len(t, trs, 2)
	last := trs[1]
	assert.Equal(t, OpMove, last.Op)
	assert.True(t, last.Rejected())
	assert.Equal(t, StateOwned, last.To)
}

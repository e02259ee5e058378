package walk

import (
	"fmt"

	"github.com/mesh-intelligence/ownbox/pkg/types"
)

func init() {
	register(Scenario{
		Name:        "match-present",
		Description: "match a Present(4) container; the present arm binds 4",
		Run:         matchPresent,
	})
	register(Scenario{
		Name:        "match-absent",
		Description: "match an Absent container; the absent arm runs with no value",
		Run:         matchAbsent,
	})
	register(Scenario{
		Name:        "pair-match",
		Description: "match a struct holding an int and a container against guarded arms",
		Run:         pairMatch,
	})
}

// describe is the two-arm match shared by the match scenarios.
func describe(foo *types.Binding[types.Container[int]]) (string, error) {
	return types.MatchOwned(foo,
		func(n int) string { return fmt.Sprintf("it's an int: %d", n) },
		func() string { return "it's nothing!" },
	)
}

func matchPresent(s *types.Scope) (Result, error) {
	foo1, err := types.OwnIn(s, types.Present(4), types.WithName("foo1"))
	if err != nil {
		return Result{}, err
	}
	msg, err := describe(foo1)
	if err != nil {
		return Result{}, err
	}
	if foo1.State() != types.StateMoved {
		return Result{}, unexpected("foo1 is %s after match", foo1.State())
	}
	return Result{Summary: msg, Values: map[string]any{"foo1": foo1.State().String()}}, nil
}

func matchAbsent(s *types.Scope) (Result, error) {
	nothing, err := types.OwnIn(s, types.Absent[int](), types.WithName("nothing"))
	if err != nil {
		return Result{}, err
	}
	msg, err := describe(nothing)
	if err != nil {
		return Result{}, err
	}
	return Result{Summary: msg}, nil
}

// Pair is a struct whose second field is a container, matched as a whole.
type Pair struct {
	X int
	Y types.Container[int]
}

// ClassifyPair matches p against ordered arms: both zero, equal (guarded),
// different, and an absent second field.
func ClassifyPair(p Pair) string {
	return types.Match(p.Y,
		func(m int) string {
			switch {
			case p.X == 0 && m == 0:
				return "the numbers are zero"
			case p.X == m:
				return "the numbers are the same"
			default:
				return fmt.Sprintf("different numbers: %d %d", p.X, m)
			}
		},
		func() string { return "the second number is absent" },
	)
}

func pairMatch(s *types.Scope) (Result, error) {
	bar, err := types.OwnIn(s, Pair{X: 15, Y: types.Present(32)}, types.WithName("bar"))
	if err != nil {
		return Result{}, err
	}
	p, err := bar.Take()
	if err != nil {
		return Result{}, err
	}

	values := map[string]any{}
	for _, other := range []Pair{
		{X: 0, Y: types.Present(0)},
		{X: 7, Y: types.Present(7)},
		{X: 1, Y: types.Absent[int]()},
	} {
		values[fmt.Sprintf("{%d %s}", other.X, other.Y)] = ClassifyPair(other)
	}
	return Result{Summary: ClassifyPair(p), Values: values}, nil
}

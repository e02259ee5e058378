package walk

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/ownbox/pkg/types"
)

func init() {
	register(Scenario{
		Name:        "frobnicate",
		Description: "unwrap a generic wrapper, then dispatch its capability to get Present(1)",
		Run:         frobnicate,
	})
	register(Scenario{
		Name:        "scope-release",
		Description: "resources owned by a scope are released in reverse order, even on an early error",
		Run:         scopeRelease,
	})
}

func frobnicate(s *types.Scope) (Result, error) {
	aFoo, err := types.OwnIn(s, types.Wrap(1), types.WithName("a_foo"))
	if err != nil {
		return Result{}, err
	}
	w, err := aFoo.Take()
	if err != nil {
		return Result{}, err
	}
	bar := w.Into()

	anotherFoo, err := types.OwnIn(s, types.Wrap(1), types.WithName("another_foo"))
	if err != nil {
		return Result{}, err
	}
	got, err := types.Dispatch[int](anotherFoo)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Summary: got.String(),
		Values:  map[string]any{"get_bar": bar, "frobnicate": got.String()},
	}, nil
}

// resource records its release into a shared log.
type resource struct {
	name     string
	released *[]string
}

func (r resource) Close() error {
	*r.released = append(*r.released, r.name)
	return nil
}

var errEarlyExit = errors.New("early exit")

func scopeRelease(s *types.Scope) (Result, error) {
	var released []string
	err := types.RunScope(func(inner *types.Scope) error {
		if _, err := types.OwnIn(inner, resource{name: "first", released: &released}, types.WithName("first")); err != nil {
			return err
		}
		if _, err := types.OwnIn(inner, resource{name: "second", released: &released}, types.WithName("second")); err != nil {
			return err
		}
		return errEarlyExit
	}, types.ScopeName("inner"), types.ScopeObserver(s.Observer()))
	if !errors.Is(err, errEarlyExit) {
		return Result{}, unexpected("inner scope returned %v", err)
	}
	if len(released) != 2 || released[0] != "second" || released[1] != "first" {
		return Result{}, unexpected("released %v", released)
	}

	return Result{
		Summary: fmt.Sprintf("released %s then %s", released[0], released[1]),
		Values:  map[string]any{"released": released},
	}, nil
}

package walk

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/ownbox/pkg/types"
)

func init() {
	register(Scenario{
		Name:        "move",
		Description: "box 3, set it to 5, move it to a new owner, add 2; the old owner is unusable",
		Run:         moveBox,
	})
	register(Scenario{
		Name:        "shared-borrow",
		Description: "read Present(3) through a shared borrow; the owner is usable afterwards",
		Run:         sharedBorrow,
	})
	register(Scenario{
		Name:        "exclusive-borrow",
		Description: "add 2 to Present(4) through the exclusive borrow; the owner holds 6",
		Run:         exclusiveBorrow,
	})
	register(Scenario{
		Name:        "borrow-conflict",
		Description: "mutation and a mutable borrow are refused while a shared borrow is live",
		Run:         borrowConflict,
	})
}

func moveBox(s *types.Scope) (Result, error) {
	mine, err := types.OwnIn(s, 3, types.WithName("mine"))
	if err != nil {
		return Result{}, err
	}
	if err := mine.Set(5); err != nil {
		return Result{}, err
	}

	nowItsMine, err := mine.Move(types.WithName("now_its_mine"))
	if err != nil {
		return Result{}, err
	}
	err = types.WithMut(nowItsMine, func(m *types.MutRef[int]) error {
		return m.Update(func(n int) int { return n + 2 })
	})
	if err != nil {
		return Result{}, err
	}

	v, err := nowItsMine.Get()
	if err != nil {
		return Result{}, err
	}

	_, useErr := mine.Get()
	if !errors.Is(useErr, types.ErrMoved) {
		return Result{}, unexpected("reading mine after move returned %v", useErr)
	}

	return Result{
		Summary: fmt.Sprintf("now_its_mine = %d", v),
		Values: map[string]any{
			"now_its_mine": v,
			"mine":         useErr.Error(),
		},
	}, nil
}

func sharedBorrow(s *types.Scope) (Result, error) {
	v, err := types.OwnIn(s, types.Present(3), types.WithName("var"))
	if err != nil {
		return Result{}, err
	}

	var seen int
	err = types.WithRef(v, func(r *types.Ref[types.Container[int]]) error {
		c, err := r.Get()
		if err != nil {
			return err
		}
		seen = c.OrElse(0)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	after, err := v.Get()
	if err != nil {
		return Result{}, err
	}
	if v.State() != types.StateOwned {
		return Result{}, unexpected("var is %s after the borrow ended", v.State())
	}

	return Result{
		Summary: fmt.Sprintf("ref_var = %d, var = %s", seen, after),
		Values:  map[string]any{"ref_var": seen, "var": after.OrElse(0)},
	}, nil
}

func exclusiveBorrow(s *types.Scope) (Result, error) {
	v, err := types.OwnIn(s, types.Present(4), types.WithName("var2"))
	if err != nil {
		return Result{}, err
	}

	err = types.WithMut(v, func(m *types.MutRef[types.Container[int]]) error {
		return m.Update(func(c types.Container[int]) types.Container[int] {
			return types.Map(c, func(n int) int { return n + 2 })
		})
	})
	if err != nil {
		return Result{}, err
	}

	after, err := v.Get()
	if err != nil {
		return Result{}, err
	}
	n, ok := after.Get()
	if !ok || n != 6 {
		return Result{}, unexpected("var2 = %s after adding 2", after)
	}
	return Result{
		Summary: fmt.Sprintf("var2 = %s", after),
		Values:  map[string]any{"var2": n},
	}, nil
}

func borrowConflict(s *types.Scope) (Result, error) {
	v, err := types.OwnIn(s, 4, types.WithName("var"))
	if err != nil {
		return Result{}, err
	}
	if err := v.Set(3); err != nil {
		return Result{}, err
	}

	values := map[string]any{}
	err = types.WithRef(v, func(r *types.Ref[int]) error {
		read, err := v.Get()
		if err != nil {
			return err
		}
		values["var"] = read

		setErr := v.Set(5)
		if !errors.Is(setErr, types.ErrSharedBorrow) {
			return unexpected("set while borrowed returned %v", setErr)
		}
		values["set"] = setErr.Error()

		_, mutErr := v.BorrowMut()
		if !errors.Is(mutErr, types.ErrSharedBorrow) {
			return unexpected("mutable borrow while borrowed returned %v", mutErr)
		}
		values["borrow_mut"] = mutErr.Error()
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Summary: "conflicting access refused while ref_var is live", Values: values}, nil
}

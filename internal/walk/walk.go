// Package walk runs the ownbox walkthrough: small scenarios that exercise
// matching, moves, borrows, dispatch, and scope release, each inside its own
// Scope.
package walk

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/ownbox/pkg/types"
)

// Walkthrough errors.
var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrScenarioFailed  = errors.New("scenario produced an unexpected outcome")
)

// Result is the observable outcome of one scenario.
type Result struct {
	Name    string         `json:"name"`
	Summary string         `json:"summary"`
	Values  map[string]any `json:"values,omitempty"`
}

// Scenario is a named walkthrough step. Run receives the scope that owns
// every binding the scenario creates.
type Scenario struct {
	Name        string
	Description string
	Run         func(s *types.Scope) (Result, error)
}

// registry holds every scenario keyed by name.
var registry = map[string]Scenario{}

func register(sc Scenario) {
	registry[sc.Name] = sc
}

// order is the walkthrough sequence used when no names are given.
var order = []string{
	"match-present",
	"match-absent",
	"pair-match",
	"frobnicate",
	"move",
	"shared-borrow",
	"exclusive-borrow",
	"borrow-conflict",
	"scope-release",
}

// Scenarios returns all scenarios in walkthrough order.
func Scenarios() []Scenario {
	out := make([]Scenario, 0, len(order))
	for _, name := range order {
		out = append(out, registry[name])
	}
	return out
}

// Names returns the sorted scenario names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the scenario with the given name.
// Returns ErrUnknownScenario if there is none.
func Lookup(name string) (Scenario, error) {
	sc, ok := registry[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w %q", ErrUnknownScenario, name)
	}
	return sc, nil
}

// Run executes the named scenarios, or all of them in walkthrough order
// when names is empty. Each scenario gets a fresh scope whose bindings
// report to obs. Run stops at the first failing scenario and returns the
// results gathered so far.
func Run(names []string, obs types.Observer) ([]Result, error) {
	scenarios := Scenarios()
	if len(names) > 0 {
		scenarios = make([]Scenario, 0, len(names))
		for _, name := range names {
			sc, err := Lookup(name)
			if err != nil {
				return nil, err
			}
			scenarios = append(scenarios, sc)
		}
	}

	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		var res Result
		err := types.RunScope(func(s *types.Scope) error {
			var err error
			res, err = sc.Run(s)
			return err
		}, types.ScopeName(sc.Name), types.ScopeObserver(obs))
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		res.Name = sc.Name
		results = append(results, res)
	}
	return results, nil
}

// unexpected reports a scenario outcome that contradicts the ownership rules.
func unexpected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrScenarioFailed, fmt.Sprintf(format, args...))
}

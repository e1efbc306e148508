package trajectory

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/intentdrift/internal/goalgraph"
)

// Selector picks the goal an action is scored against. ok is false when no
// goal is eligible.
type Selector interface {
	Select(ctx context.Context, g *goalgraph.Graph, a Action, completed goalgraph.Set) (goal string, ok bool, err error)
	Name() string
}

// FirstSatisfied selects the first goal in insertion order whose
// prerequisites are satisfied. Completed goals stay eligible, so the first
// root goal wins for every action.
type FirstSatisfied struct{}

func (FirstSatisfied) Select(_ context.Context, g *goalgraph.Graph, _ Action, completed goalgraph.Set) (string, bool, error) {
	for _, goal := range g.Goals() {
		if g.CheckPrerequisites(goal.Name, completed) {
			return goal.Name, true, nil
		}
	}
	return "", false, nil
}

func (FirstSatisfied) Name() string { return "first" }

// NextPending selects the first goal in insertion order that is not yet
// completed and whose prerequisites are satisfied.
type NextPending struct{}

func (NextPending) Select(_ context.Context, g *goalgraph.Graph, _ Action, completed goalgraph.Set) (string, bool, error) {
	available := g.Available(completed)
	if len(available) == 0 {
		return "", false, nil
	}
	return available[0].Name, true, nil
}

func (NextPending) Name() string { return "pending" }

// NewSelector returns the selector registered under name. The llm selector
// needs a Selector built with NewLLMSelector and is not constructed here.
func NewSelector(name string) (Selector, error) {
	switch strings.ToLower(name) {
	case "", "first":
		return FirstSatisfied{}, nil
	case "pending":
		return NextPending{}, nil
	default:
		return nil, fmt.Errorf("unknown selector %q (want first, pending or llm)", name)
	}
}

// eligible returns the names of goals whose prerequisites are satisfied,
// in insertion order.
func eligible(g *goalgraph.Graph, completed goalgraph.Set) []string {
	var names []string
	for _, goal := range g.Goals() {
		if g.CheckPrerequisites(goal.Name, completed) {
			names = append(names, goal.Name)
		}
	}
	return names
}

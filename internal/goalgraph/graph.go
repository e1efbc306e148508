package goalgraph

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle marks a prerequisite cycle.
var ErrCycle = errors.New("prerequisite cycle")

// CycleError reports the goals forming a prerequisite cycle, starting and
// ending at the same goal.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Graph maps goal names to their prerequisites and time windows. Goals keep
// the order in which they were first added.
//
// Graph is not safe for concurrent mutation. Concurrent queries are fine
// once construction is finished.
type Graph struct {
	order []string
	nodes map[string]*Goal
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Goal)}
}

// AddGoal inserts or replaces a goal. Replacing keeps the goal's original
// insertion position.
func (g *Graph) AddGoal(name string, prerequisites []string, window Window) {
	if _, ok := g.nodes[name]; !ok {
		g.order = append(g.order, name)
	}
	g.nodes[name] = &Goal{
		Name:          name,
		Prerequisites: slices.Clone(prerequisites),
		Window:        window,
	}
}

// Goal returns a copy of the named goal.
func (g *Graph) Goal(name string) (Goal, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return Goal{}, false
	}
	return copyGoal(n), true
}

// Has reports whether the graph contains name.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Len returns the number of goals.
func (g *Graph) Len() int { return len(g.order) }

// Goals returns all goals in insertion order.
func (g *Graph) Goals() []Goal {
	out := make([]Goal, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, copyGoal(g.nodes[name]))
	}
	return out
}

// Rank returns the length of the longest prerequisite chain ending at name:
// 0 for an unknown goal, 1 for a goal without prerequisites, otherwise one
// more than the highest-ranked prerequisite. Ranks are recomputed on every
// call so they track later AddGoal calls.
func (g *Graph) Rank(name string) (int, error) {
	return g.rank(name, make(map[string]int), make(map[string]bool), nil)
}

func (g *Graph) rank(name string, memo map[string]int, onPath map[string]bool, path []string) (int, error) {
	n, ok := g.nodes[name]
	if !ok {
		return 0, nil
	}
	if r, ok := memo[name]; ok {
		return r, nil
	}

	path = append(path, name)
	if onPath[name] {
		start := slices.Index(path, name)
		return 0, &CycleError{Path: slices.Clone(path[start:])}
	}
	onPath[name] = true

	best := 0
	for _, p := range n.Prerequisites {
		r, err := g.rank(p, memo, onPath, path)
		if err != nil {
			return 0, err
		}
		best = max(best, r)
	}

	delete(onPath, name)
	memo[name] = best + 1
	return best + 1, nil
}

// CheckPrerequisites reports whether every prerequisite of name is in
// completed. An unknown goal has no prerequisites and is always satisfied.
func (g *Graph) CheckPrerequisites(name string, completed Set) bool {
	n, ok := g.nodes[name]
	if !ok {
		return true
	}
	for _, p := range n.Prerequisites {
		if !completed[p] {
			return false
		}
	}
	return true
}

// Window returns the goal's time window, or an unbounded window when the
// goal is unknown or has none.
func (g *Graph) Window(name string) Window {
	n, ok := g.nodes[name]
	if !ok {
		return Unbounded()
	}
	return n.Window
}

// Roots returns goals without prerequisites in insertion order.
func (g *Graph) Roots() []Goal {
	var out []Goal
	for _, name := range g.order {
		if n := g.nodes[name]; len(n.Prerequisites) == 0 {
			out = append(out, copyGoal(n))
		}
	}
	return out
}

// Dependents returns goals that list name as a direct prerequisite.
func (g *Graph) Dependents(name string) []Goal {
	var out []Goal
	for _, other := range g.order {
		n := g.nodes[other]
		if slices.Contains(n.Prerequisites, name) {
			out = append(out, copyGoal(n))
		}
	}
	return out
}

// Available returns goals whose prerequisites are met and that are not yet
// completed, in insertion order.
func (g *Graph) Available(completed Set) []Goal {
	var out []Goal
	for _, name := range g.order {
		if !completed[name] && g.CheckPrerequisites(name, completed) {
			out = append(out, copyGoal(g.nodes[name]))
		}
	}
	return out
}

// Blocked returns goals with at least one unmet prerequisite.
func (g *Graph) Blocked(completed Set) []Goal {
	var out []Goal
	for _, name := range g.order {
		if !g.CheckPrerequisites(name, completed) {
			out = append(out, copyGoal(g.nodes[name]))
		}
	}
	return out
}

// TopologicalOrder returns goals so that every goal follows its
// prerequisites (Kahn's algorithm). Ties are broken by insertion order.
// Prerequisites that are not goals in the graph are ignored.
func (g *Graph) TopologicalOrder() ([]Goal, error) {
	inDegree := make(map[string]int, len(g.order))
	dependents := make(map[string][]string)
	for _, name := range g.order {
		for _, p := range g.nodes[name].Prerequisites {
			if _, ok := g.nodes[p]; !ok {
				continue
			}
			inDegree[name]++
			dependents[p] = append(dependents[p], name)
		}
	}

	var queue []string
	for _, name := range g.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	out := make([]Goal, 0, len(g.order))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		out = append(out, copyGoal(g.nodes[name]))

		for _, dep := range dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(out) < len(g.order) {
		var stuck []string
		for _, name := range g.order {
			if inDegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, fmt.Errorf("%w involving goals: %s", ErrCycle, strings.Join(stuck, ", "))
	}
	return out, nil
}

func copyGoal(n *Goal) Goal {
	return Goal{
		Name:          n.Name,
		Prerequisites: slices.Clone(n.Prerequisites),
		Window:        n.Window,
	}
}

package goalgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the graph for structural problems: no goals, empty names,
// prerequisites that are not goals, self-dependencies, cycles, and the
// absence of a root goal. All problems found are reported in one error.
//
// Windows with Low > High are not reported; they are scored as always out
// of window.
func (g *Graph) Validate() error {
	if len(g.order) == 0 {
		return fmt.Errorf("goal graph validation failed:\n  no goals defined")
	}

	var errs []string

	for _, name := range g.order {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "goal with empty name")
		}
		for _, p := range g.nodes[name].Prerequisites {
			switch {
			case p == name:
				errs = append(errs, fmt.Sprintf("goal %q lists itself as a prerequisite", name))
			case !g.Has(p):
				errs = append(errs, fmt.Sprintf("goal %q references nonexistent prerequisite %q", name, p))
			}
		}
	}

	if _, err := g.TopologicalOrder(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(g.Roots()) == 0 {
		errs = append(errs, "no root goals found (at least one goal must have no prerequisites)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("goal graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// IsCycle reports whether err was caused by a prerequisite cycle.
func IsCycle(err error) bool {
	return errors.Is(err, ErrCycle)
}

package trajectory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhisek/intentdrift/internal/drift"
	"github.com/abhisek/intentdrift/internal/goalgraph"
)

// Decision records how one action was scored.
type Decision struct {
	Action Action

	// Goal is empty and Skipped is true when no goal was selectable.
	Goal    string
	Skipped bool

	Rank   int
	Window goalgraph.Window
	Delta  float64
	Total  float64

	// Completed is true when the action completed Goal.
	Completed bool
}

// Result is the outcome of a run.
type Result struct {
	Decisions []Decision
	Completed []string
	Report    drift.Report
}

// Runner walks a trajectory, selects a goal for each action and scores it.
type Runner struct {
	Scorer     *drift.Scorer
	Selector   Selector
	Completion Completion
	Logger     zerolog.Logger

	// OnDecision, when set, is called after each action is handled.
	OnDecision func(Decision)
}

// NewRunner creates a Runner with the FirstSatisfied selector and the
// default completion keywords.
func NewRunner(scorer *drift.Scorer) *Runner {
	return &Runner{
		Scorer:     scorer,
		Selector:   FirstSatisfied{},
		Completion: KeywordCompletion{Keywords: DefaultKeywords},
		Logger:     zerolog.Nop(),
	}
}

// Run scores actions in order against g. The scorer's trace is appended
// to, not reset, so a Runner can continue a trajectory across calls. On
// error the result holds the decisions and report scored so far.
func (r *Runner) Run(ctx context.Context, g *goalgraph.Graph, actions []Action) (Result, error) {
	if err := g.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid goal graph: %w", err)
	}

	completed := goalgraph.NewSet()
	var res Result
	fail := func(err error) (Result, error) {
		res.Report = r.Scorer.Report()
		return res, err
	}

	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		goal, ok, err := r.Selector.Select(ctx, g, a, completed)
		if err != nil {
			return fail(fmt.Errorf("select goal at t=%d: %w", a.T, err))
		}
		if !ok {
			r.Logger.Warn().Int("t", a.T).Str("action", a.Text).Msg("no eligible goal, action skipped")
			d := Decision{Action: a, Skipped: true}
			res.Decisions = append(res.Decisions, d)
			r.emit(d)
			continue
		}

		rank, err := g.Rank(goal)
		if err != nil {
			return fail(fmt.Errorf("rank goal %q: %w", goal, err))
		}
		window := g.Window(goal)

		delta, total, err := r.Scorer.Update(ctx, a.Text, goal, rank, a.T, window)
		if err != nil {
			return fail(fmt.Errorf("score t=%d: %w", a.T, err))
		}

		d := Decision{
			Action: a,
			Goal:   goal,
			Rank:   rank,
			Window: window,
			Delta:  delta,
			Total:  total,
		}
		if r.Completion.Completed(a, goal) && !completed.Has(goal) {
			completed.Add(goal)
			res.Completed = append(res.Completed, goal)
			d.Completed = true
		}

		r.Logger.Info().
			Int("t", a.T).
			Str("goal", goal).
			Float64("delta", delta).
			Float64("total_ids", total).
			Bool("completed", d.Completed).
			Msg("action scored")

		res.Decisions = append(res.Decisions, d)
		r.emit(d)
	}

	res.Report = r.Scorer.Report()
	return res, nil
}

func (r *Runner) emit(d Decision) {
	if r.OnDecision != nil {
		r.OnDecision(d)
	}
}

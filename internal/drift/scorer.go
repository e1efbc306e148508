package drift

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/abhisek/intentdrift/internal/encoder"
	"github.com/abhisek/intentdrift/internal/goalgraph"
	"github.com/abhisek/intentdrift/internal/transport"
)

// Scorer accumulates the Intent Drift Score over a single trajectory.
//
// A Scorer is not safe for concurrent use. Score parallel trajectories with
// one Scorer each; encoders and goal graphs can be shared between them.
type Scorer struct {
	config   Config
	encoder  encoder.Encoder
	sinkhorn *transport.Sinkhorn
	logger   zerolog.Logger

	total float64
	trace []Step
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithEncoder replaces the default SHA-256 encoder.
func WithEncoder(enc encoder.Encoder) Option {
	return func(s *Scorer) { s.encoder = enc }
}

// WithLogger sets the logger used for per-step debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scorer) { s.logger = l }
}

// New creates a Scorer with an empty trace.
func New(cfg Config, opts ...Option) *Scorer {
	s := &Scorer{
		config:   cfg,
		encoder:  encoder.NewHashEncoder(),
		sinkhorn: transport.NewSinkhorn(cfg.Transport),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Config returns the scorer configuration.
func (s *Scorer) Config() Config { return s.config }

// Encoder returns the encoder used for semantic distance.
func (s *Scorer) Encoder() encoder.Encoder { return s.encoder }

// Reset clears the running total and the trace.
func (s *Scorer) Reset() {
	s.total = 0
	s.trace = nil
}

// SemanticDistance returns 1 - cos(action, goal) on unit embeddings.
func (s *Scorer) SemanticDistance(ctx context.Context, action, goal string) (float64, error) {
	ea, err := s.encoder.Encode(ctx, action)
	if err != nil {
		return 0, fmt.Errorf("encode action: %w", err)
	}
	eg, err := s.encoder.Encode(ctx, goal)
	if err != nil {
		return 0, fmt.Errorf("encode goal: %w", err)
	}
	dot, err := encoder.Dot(ea, eg)
	if err != nil {
		return 0, err
	}
	return 1.0 - dot, nil
}

// StructuralPenalty charges PenaltyRate for every rank level stepRank falls
// short of goalRank.
func (s *Scorer) StructuralPenalty(goalRank, stepRank int) float64 {
	return StructuralPenalty(goalRank, stepRank)
}

// TemporalPenalty charges PenaltyRate for every time unit t lies outside w.
func (s *Scorer) TemporalPenalty(t int, w goalgraph.Window) float64 {
	return TemporalPenalty(t, w)
}

// StructuralPenalty is the package-level form of Scorer.StructuralPenalty.
func StructuralPenalty(goalRank, stepRank int) float64 {
	if stepRank >= goalRank {
		return 0
	}
	return float64(goalRank-stepRank) * PenaltyRate
}

// TemporalPenalty is the package-level form of Scorer.TemporalPenalty.
// An inverted window (Low > High) penalizes every t.
func TemporalPenalty(t int, w goalgraph.Window) float64 {
	if !w.Bounded() {
		return 0
	}
	switch {
	case t < w.Low:
		return float64(w.Low-t) * PenaltyRate
	case t > w.High:
		return float64(t-w.High) * PenaltyRate
	default:
		return 0
	}
}

// Update scores action against goal at time t, adds the weighted penalty to
// the running total and appends a step to the trace. The structural penalty
// compares the goal rank with itself and is therefore zero; use UpdateStep
// to supply a different step rank.
func (s *Scorer) Update(ctx context.Context, action, goal string, goalRank, t int, w goalgraph.Window) (delta, total float64, err error) {
	return s.UpdateStep(ctx, Observation{
		T:        t,
		Action:   action,
		Goal:     goal,
		GoalRank: goalRank,
		StepRank: goalRank,
		Window:   w,
	})
}

// UpdateStep is Update with an explicit step rank.
func (s *Scorer) UpdateStep(ctx context.Context, obs Observation) (delta, total float64, err error) {
	b, err := s.Breakdown(ctx, obs)
	if err != nil {
		return 0, s.total, err
	}

	delta = s.config.Alpha*b.Semantic + s.config.Beta*b.Structural + s.config.Gamma*b.Temporal
	s.total += delta
	s.trace = append(s.trace, Step{
		T:      obs.T,
		Action: obs.Action,
		Goal:   obs.Goal,
		Delta:  delta,
		Total:  s.total,
	})

	s.logger.Debug().
		Int("t", obs.T).
		Str("goal", obs.Goal).
		Float64("semantic", b.Semantic).
		Float64("structural", b.Structural).
		Float64("temporal", b.Temporal).
		Float64("delta", delta).
		Float64("total_ids", s.total).
		Msg("step scored")

	return delta, s.total, nil
}

// Breakdown computes the unweighted penalty components without touching the
// running total.
func (s *Scorer) Breakdown(ctx context.Context, obs Observation) (Breakdown, error) {
	sem, err := s.SemanticDistance(ctx, obs.Action, obs.Goal)
	if err != nil {
		return Breakdown{}, fmt.Errorf("semantic distance at t=%d: %w", obs.T, err)
	}
	return Breakdown{
		Semantic:   sem,
		Structural: StructuralPenalty(obs.GoalRank, obs.StepRank),
		Temporal:   TemporalPenalty(obs.T, obs.Window),
	}, nil
}

// Total returns the running score.
func (s *Scorer) Total() float64 { return s.total }

// Len returns the number of scored steps.
func (s *Scorer) Len() int { return len(s.trace) }

// Steps returns a copy of the trace.
func (s *Scorer) Steps() []Step { return slices.Clone(s.trace) }

// TransportCost encodes both text sets and returns the Sinkhorn transport
// cost between them, for example a stretch of actions against a set of goal
// exemplars. It does not affect the running total.
func (s *Scorer) TransportCost(ctx context.Context, a, b []string) (float64, error) {
	ea, err := s.encodeAll(ctx, a)
	if err != nil {
		return 0, err
	}
	eb, err := s.encodeAll(ctx, b)
	if err != nil {
		return 0, err
	}
	return s.sinkhorn.Cost(ea, eb)
}

func (s *Scorer) encodeAll(ctx context.Context, texts []string) ([]encoder.Embedding, error) {
	out := make([]encoder.Embedding, len(texts))
	for i, t := range texts {
		v, err := s.encoder.Encode(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", t, err)
		}
		out[i] = v
	}
	return out, nil
}

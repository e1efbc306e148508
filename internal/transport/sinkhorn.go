package transport

import (
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/intentdrift/internal/encoder"
)

// ErrEmptyCloud is returned when either point cloud has no points.
var ErrEmptyCloud = errors.New("point cloud is empty")

// Config holds the Sinkhorn solver parameters.
type Config struct {
	// Reg is the entropic regularization strength. Small values make the
	// Gibbs kernel underflow for distant clouds; the solver does not guard
	// against that and returns a non-finite cost instead.
	Reg float64 `mapstructure:"reg"`

	// Iterations is the fixed number of scaling rounds. There is no
	// convergence check.
	Iterations int `mapstructure:"iterations"`
}

// DefaultConfig returns reg=0.05 with 30 iterations.
func DefaultConfig() Config {
	return Config{
		Reg:        0.05,
		Iterations: 30,
	}
}

// Sinkhorn computes entropy-regularized optimal transport costs between
// uniform empirical distributions.
type Sinkhorn struct {
	config Config
}

// NewSinkhorn creates a solver with the given configuration.
func NewSinkhorn(cfg Config) *Sinkhorn {
	return &Sinkhorn{config: cfg}
}

// Config returns the solver parameters.
func (s *Sinkhorn) Config() Config { return s.config }

// Cost returns sum(P*C)/sum(P) where C is the pairwise Euclidean cost
// matrix between a and b and P is the transport plan after the configured
// number of Sinkhorn-Knopp rounds.
func (s *Sinkhorn) Cost(a, b []encoder.Embedding) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: |A|=%d |B|=%d", ErrEmptyCloud, len(a), len(b))
	}

	n, m := len(a), len(b)
	cost := make([][]float64, n)
	kernel := make([][]float64, n)
	for i := range n {
		cost[i] = make([]float64, m)
		kernel[i] = make([]float64, m)
		for j := range m {
			d, err := encoder.Distance(a[i], b[j])
			if err != nil {
				return 0, fmt.Errorf("cost[%d][%d]: %w", i, j, err)
			}
			cost[i][j] = d
			kernel[i][j] = math.Exp(-d / s.config.Reg)
		}
	}

	u := uniform(n)
	v := uniform(m)
	for range s.config.Iterations {
		// u = 1 / (K v)
		for i := range n {
			var kv float64
			for j := range m {
				kv += kernel[i][j] * v[j]
			}
			u[i] = 1.0 / kv
		}
		// v = 1 / (K^T u)
		for j := range m {
			var ktu float64
			for i := range n {
				ktu += kernel[i][j] * u[i]
			}
			v[j] = 1.0 / ktu
		}
	}

	var weighted, mass float64
	for i := range n {
		for j := range m {
			p := u[i] * kernel[i][j] * v[j]
			weighted += p * cost[i][j]
			mass += p
		}
	}
	return weighted / mass, nil
}

// IsDegenerate reports whether a cost is NaN or infinite, which happens when
// the kernel underflows for the chosen regularization.
func IsDegenerate(cost float64) bool {
	return math.IsNaN(cost) || math.IsInf(cost, 0)
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0 / float64(n)
	}
	return out
}

package drift

import (
	"fmt"

	"github.com/abhisek/intentdrift/internal/transport"
)

// PenaltyRate is the per-unit cost of a rank shortfall or of each time step
// outside a goal's window.
const PenaltyRate = 0.05

// Config holds the scorer weights. The weights are expected to sum to 1 but
// this is not enforced.
type Config struct {
	Alpha float64 `mapstructure:"alpha"` // semantic distance weight
	Beta  float64 `mapstructure:"beta"`  // structural penalty weight
	Gamma float64 `mapstructure:"gamma"` // temporal penalty weight

	Transport transport.Config `mapstructure:"transport"`
}

// DefaultConfig returns α=0.6, β=0.3, γ=0.1 and the default Sinkhorn
// parameters.
func DefaultConfig() Config {
	return Config{
		Alpha:     0.6,
		Beta:      0.3,
		Gamma:     0.1,
		Transport: transport.DefaultConfig(),
	}
}

// Validate rejects negative weights and non-positive solver parameters.
func (c Config) Validate() error {
	if c.Alpha < 0 || c.Beta < 0 || c.Gamma < 0 {
		return fmt.Errorf("weights must be non-negative, got alpha=%g beta=%g gamma=%g", c.Alpha, c.Beta, c.Gamma)
	}
	if c.Transport.Reg <= 0 {
		return fmt.Errorf("transport reg must be > 0, got %g", c.Transport.Reg)
	}
	if c.Transport.Iterations <= 0 {
		return fmt.Errorf("transport iterations must be > 0, got %d", c.Transport.Iterations)
	}
	return nil
}

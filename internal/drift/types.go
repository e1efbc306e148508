package drift

import "github.com/abhisek/intentdrift/internal/goalgraph"

// Step is one scored trajectory step. Total is the running score after the
// step was added.
type Step struct {
	T      int     `json:"t"`
	Action string  `json:"step"`
	Goal   string  `json:"goal"`
	Delta  float64 `json:"delta"`
	Total  float64 `json:"total_ids"`
}

// Report is the exported trace: the final score and every step in the order
// it was scored.
type Report struct {
	TotalIDS float64 `json:"total_ids"`
	Steps    []Step  `json:"steps"`
}

// Observation is the fully resolved input for one scoring step.
type Observation struct {
	T      int
	Action string
	Goal   string

	// GoalRank is the structural rank required by the goal.
	GoalRank int

	// StepRank is the rank the action actually reached. Update sets it to
	// GoalRank, which makes the structural penalty zero.
	StepRank int

	Window goalgraph.Window
}

// Breakdown holds the unweighted components of a step's penalty.
type Breakdown struct {
	Semantic   float64
	Structural float64
	Temporal   float64
}

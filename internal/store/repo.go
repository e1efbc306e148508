package store

import (
	"context"
	"time"
)

// QueryOpts configures queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After (events only)
	Before int64     // sequence < Before (events only)
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// Scenario filters runs by scenario name. Purpose filters LLM events.
	Scenario string
	Purpose  string
}

// Run is one scored trajectory.
type Run struct {
	ID        string
	Scenario  string
	Selector  string
	Encoder   string
	TotalIDS  float64
	Alpha     float64
	Beta      float64
	Gamma     float64
	CreatedAt time.Time

	// Steps is empty in List results.
	Steps     []RunStep
	StepCount int
}

// RunStep is one scored action of a run.
type RunStep struct {
	T        int
	Action   string
	Goal     string
	Delta    float64
	TotalIDS float64
}

// RunRepo persists scored runs.
type RunRepo interface {
	// Save stores a run and its steps in one transaction.
	Save(ctx context.Context, run *Run) error

	// Get returns a run with its steps, or nil if it does not exist.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs newest first, without steps.
	List(ctx context.Context, opts QueryOpts) ([]Run, error)

	// Delete removes a run and its steps. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// UsageByPurpose aggregates token usage per request purpose.
type UsageByPurpose struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// UsageByModel aggregates token usage per model.
type UsageByModel struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventReader provides read access to LLM request events.
type EventReader interface {
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns the event with id, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]UsageByPurpose, error)
	LLMUsageByModel(ctx context.Context) ([]UsageByModel, error)
}

package trajectory

import "strings"

// Completion decides whether the goal an action was scored against is done
// after that action.
type Completion interface {
	Completed(a Action, goal string) bool
}

// DefaultKeywords mark a goal complete when an action books or plans.
var DefaultKeywords = []string{"book", "plan"}

// KeywordCompletion completes the selected goal when the action text
// contains any keyword. Matching is a case-sensitive substring test.
type KeywordCompletion struct {
	Keywords []string
}

func (k KeywordCompletion) Completed(a Action, _ string) bool {
	for _, kw := range k.Keywords {
		if kw != "" && strings.Contains(a.Text, kw) {
			return true
		}
	}
	return false
}

// NeverComplete keeps every goal pending.
type NeverComplete struct{}

func (NeverComplete) Completed(Action, string) bool { return false }

package trajectory

// Action is one observed step of an agent trajectory. T is the 1-based
// time index the action is scored at.
type Action struct {
	T    int
	Text string
}

// FromTexts numbers texts from 1 in order.
func FromTexts(texts ...string) []Action {
	actions := make([]Action, len(texts))
	for i, text := range texts {
		actions[i] = Action{T: i + 1, Text: text}
	}
	return actions
}

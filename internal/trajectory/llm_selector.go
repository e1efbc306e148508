package trajectory

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/abhisek/intentdrift/internal/goalgraph"
	"github.com/abhisek/intentdrift/internal/llm"
)

// GoalSelectionSchema defines the JSON schema for goal selection responses.
var GoalSelectionSchema = &llm.Schema{
	Name:        "goal-selection",
	Description: "The goal an agent action is working towards",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"goal": map[string]any{
				"type":        "string",
				"description": "Name of the selected goal, copied exactly from the candidate list",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "One sentence on why the action serves this goal",
			},
		},
		"required":             []any{"goal", "reasoning"},
		"additionalProperties": false,
	},
}

// LLMSelectorConfig holds configuration for the LLM selector.
type LLMSelectorConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultLLMSelectorConfig returns sensible defaults.
func DefaultLLMSelectorConfig() LLMSelectorConfig {
	return LLMSelectorConfig{
		MaxTokens:   256,
		Temperature: 0.2,
	}
}

// LLMSelector asks a model which eligible goal an action serves. It falls
// back to another selector when the provider fails or names a goal that is
// not eligible.
type LLMSelector struct {
	provider llm.Provider
	cfg      LLMSelectorConfig
	fallback Selector
	logger   zerolog.Logger
}

// NewLLMSelector creates an LLM selector with FirstSatisfied as fallback.
func NewLLMSelector(provider llm.Provider, cfg LLMSelectorConfig, logger zerolog.Logger) *LLMSelector {
	return &LLMSelector{
		provider: provider,
		cfg:      cfg,
		fallback: FirstSatisfied{},
		logger:   logger,
	}
}

// WithFallback replaces the fallback selector.
func (s *LLMSelector) WithFallback(fb Selector) *LLMSelector {
	s.fallback = fb
	return s
}

func (s *LLMSelector) Name() string { return "llm" }

type selectionOutput struct {
	Goal      string `json:"goal"`
	Reasoning string `json:"reasoning"`
}

func (s *LLMSelector) Select(ctx context.Context, g *goalgraph.Graph, a Action, completed goalgraph.Set) (string, bool, error) {
	candidates := eligible(g, completed)
	switch len(candidates) {
	case 0:
		return "", false, nil
	case 1:
		return candidates[0], true, nil
	}

	msg, err := buildSelectionMessage(g, a, candidates, completed)
	if err != nil {
		return "", false, err
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeGoalSelection), llm.Request{
		System:      selectionSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		Schema:      GoalSelectionSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		s.logger.Warn().Err(err).Int("t", a.T).Msg("goal selection failed, using fallback")
		return s.fallback.Select(ctx, g, a, completed)
	}

	var out selectionOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		s.logger.Warn().Err(err).Int("t", a.T).Msg("unparseable goal selection, using fallback")
		return s.fallback.Select(ctx, g, a, completed)
	}
	if !slices.Contains(candidates, out.Goal) {
		s.logger.Warn().
			Int("t", a.T).
			Str("goal", out.Goal).
			Msg("model picked an ineligible goal, using fallback")
		return s.fallback.Select(ctx, g, a, completed)
	}

	s.logger.Debug().Int("t", a.T).Str("goal", out.Goal).Str("reasoning", out.Reasoning).Msg("goal selected")
	return out.Goal, true, nil
}

const selectionSystemPrompt = `You monitor an autonomous agent working through a plan of goals. For each action the agent takes, decide which goal the action is working towards.

Instructions:
- Pick exactly one goal from the candidate list and copy its name verbatim.
- Do NOT invent goals. Only use names from the list provided.
- Prefer goals that are not completed yet when the action fits several.
- Keep reasoning to one sentence.`

var selectionUserTemplate = template.Must(template.New("selection").Parse(`Step {{.T}}: {{.Action}}

Candidate goals:
{{range .Goals}}- {{.Name}}{{if .Window}} (expected during steps {{.Window}}){{end}}{{if .Done}} [completed]{{end}}
{{end}}`))

type selectionGoal struct {
	Name   string
	Window string
	Done   bool
}

func buildSelectionMessage(g *goalgraph.Graph, a Action, candidates []string, completed goalgraph.Set) (string, error) {
	data := struct {
		T      int
		Action string
		Goals  []selectionGoal
	}{T: a.T, Action: a.Text}

	for _, name := range candidates {
		sg := selectionGoal{Name: name, Done: completed.Has(name)}
		if w := g.Window(name); w.Bounded() {
			sg.Window = w.String()
		}
		data.Goals = append(data.Goals, sg)
	}

	var buf bytes.Buffer
	if err := selectionUserTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Package scenario loads goal graphs and agent trajectories from YAML
// documents.
package scenario

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/intentdrift/internal/drift"
	"github.com/abhisek/intentdrift/internal/goalgraph"
	"github.com/abhisek/intentdrift/internal/trajectory"
)

// Weights overrides the scorer weights. Nil fields keep the configured value.
type Weights struct {
	Alpha *float64 `yaml:"alpha,omitempty"`
	Beta  *float64 `yaml:"beta,omitempty"`
	Gamma *float64 `yaml:"gamma,omitempty"`
}

// Goal is one goal entry. Window is [low, high] or absent.
type Goal struct {
	Name          string   `yaml:"name"`
	Prerequisites []string `yaml:"prerequisites,omitempty"`
	Window        []int    `yaml:"window,omitempty,flow"`
}

// Step is one trajectory entry. In YAML it is either a plain string, numbered
// by position, or a mapping with an explicit t.
type Step struct {
	T      int    `yaml:"t,omitempty"`
	Action string `yaml:"action"`
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&s.Action)
	}
	type plain Step
	return node.Decode((*plain)(s))
}

func (s Step) MarshalYAML() (any, error) {
	if s.T == 0 {
		return s.Action, nil
	}
	type plain Step
	return plain(s), nil
}

// Scenario is a goal graph plus the trajectory to score against it.
type Scenario struct {
	Name               string   `yaml:"name"`
	Weights            *Weights `yaml:"weights,omitempty"`
	Goals              []Goal   `yaml:"goals"`
	Trajectory         []Step   `yaml:"trajectory"`
	CompletionKeywords []string `yaml:"completion_keywords,omitempty,flow"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return sc, nil
}

// Parse validates data against the scenario schema and decodes it.
// JSON documents are accepted too since JSON is valid YAML.
func Parse(data []byte) (*Scenario, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

//go:embed travel.yaml
var travelYAML []byte

// Travel returns the built-in demonstration scenario: three chained travel
// goals and five actions.
func Travel() *Scenario {
	sc, err := Parse(travelYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in travel scenario: %v", err))
	}
	return sc
}

// Graph builds the goal graph. Validation is left to the caller.
func (s *Scenario) Graph() *goalgraph.Graph {
	g := goalgraph.New()
	for _, goal := range s.Goals {
		w := goalgraph.Unbounded()
		if len(goal.Window) == 2 {
			w = goalgraph.NewWindow(goal.Window[0], goal.Window[1])
		}
		g.AddGoal(goal.Name, goal.Prerequisites, w)
	}
	return g
}

// Actions returns the trajectory. Plain entries take their 1-based position
// as time index.
func (s *Scenario) Actions() []trajectory.Action {
	actions := make([]trajectory.Action, len(s.Trajectory))
	for i, st := range s.Trajectory {
		t := st.T
		if t == 0 {
			t = i + 1
		}
		actions[i] = trajectory.Action{T: t, Text: st.Action}
	}
	return actions
}

// Completion returns the keyword completion policy, defaulting to the
// "book" and "plan" keywords.
func (s *Scenario) Completion() trajectory.Completion {
	if len(s.CompletionKeywords) == 0 {
		return trajectory.KeywordCompletion{Keywords: trajectory.DefaultKeywords}
	}
	return trajectory.KeywordCompletion{Keywords: s.CompletionKeywords}
}

// ApplyWeights overlays the scenario's weights on cfg.
func (s *Scenario) ApplyWeights(cfg drift.Config) drift.Config {
	if s.Weights == nil {
		return cfg
	}
	if s.Weights.Alpha != nil {
		cfg.Alpha = *s.Weights.Alpha
	}
	if s.Weights.Beta != nil {
		cfg.Beta = *s.Weights.Beta
	}
	if s.Weights.Gamma != nil {
		cfg.Gamma = *s.Weights.Gamma
	}
	return cfg
}

// Marshal encodes the scenario as YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

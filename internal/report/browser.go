package report

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intentdrift/internal/store"
	"github.com/abhisek/intentdrift/internal/trajectory"
)

const browseLimit = 50

type runsLoadedMsg struct {
	Runs []store.Run
	Err  error
}

type runLoadedMsg struct {
	Run *store.Run
	Err error
}

// Browser is an interactive list of stored runs. Enter expands a run into
// its scored steps; "/" filters by scenario or run ID.
type Browser struct {
	ctx      context.Context
	repo     store.RunRepo
	runs     []store.Run
	steps    map[string][]store.RunStep
	expanded map[string]bool
	selected int

	filter    textinput.Model
	filtering bool

	loaded bool
	errMsg string
}

// NewBrowser creates a Browser over repo.
func NewBrowser(ctx context.Context, repo store.RunRepo) *Browser {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "scenario or run id"
	ti.CharLimit = 64

	return &Browser{
		ctx:      ctx,
		repo:     repo,
		steps:    make(map[string][]store.RunStep),
		expanded: make(map[string]bool),
		filter:   ti,
	}
}

func (b *Browser) Init() tea.Cmd {
	return func() tea.Msg {
		runs, err := b.repo.List(b.ctx, store.QueryOpts{Limit: browseLimit})
		return runsLoadedMsg{Runs: runs, Err: err}
	}
}

func (b *Browser) loadRun(id string) tea.Cmd {
	return func() tea.Msg {
		run, err := b.repo.Get(b.ctx, id)
		if err == nil && run == nil {
			err = fmt.Errorf("run %s not found", id)
		}
		return runLoadedMsg{Run: run, Err: err}
	}
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runsLoadedMsg:
		if msg.Err != nil {
			b.errMsg = msg.Err.Error()
		} else {
			b.runs = msg.Runs
		}
		b.loaded = true
		return b, nil

	case runLoadedMsg:
		if msg.Err != nil {
			b.errMsg = msg.Err.Error()
			return b, nil
		}
		b.steps[msg.Run.ID] = msg.Run.Steps
		b.expanded[msg.Run.ID] = true
		return b, nil

	case tea.KeyPressMsg:
		if b.filtering {
			return b.updateFilter(msg)
		}
		return b.updateList(msg)
	}
	return b, nil
}

func (b *Browser) updateFilter(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return b, tea.Quit
	case "esc":
		b.filter.SetValue("")
		b.filter.Blur()
		b.filtering = false
		b.selected = 0
		return b, nil
	case "enter":
		b.filter.Blur()
		b.filtering = false
		return b, nil
	}

	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	b.selected = 0
	return b, cmd
}

func (b *Browser) updateList(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	visible := b.visible()

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return b, tea.Quit
	case "up", "k":
		if b.selected > 0 {
			b.selected--
		}
	case "down", "j":
		if b.selected < len(visible)-1 {
			b.selected++
		}
	case "/":
		b.filtering = true
		return b, b.filter.Focus()
	case "enter":
		if b.selected >= len(visible) {
			return b, nil
		}
		id := visible[b.selected].ID
		if b.expanded[id] {
			b.expanded[id] = false
			return b, nil
		}
		if _, ok := b.steps[id]; ok {
			b.expanded[id] = true
			return b, nil
		}
		return b, b.loadRun(id)
	}
	return b, nil
}

// visible returns the runs matching the filter.
func (b *Browser) visible() []store.Run {
	q := strings.TrimSpace(b.filter.Value())
	if q == "" {
		return b.runs
	}
	var out []store.Run
	for _, r := range b.runs {
		if strings.Contains(r.Scenario, q) || strings.HasPrefix(r.ID, q) {
			out = append(out, r)
		}
	}
	return out
}

func (b *Browser) View() tea.View {
	v := tea.NewView(b.Content())
	v.AltScreen = true
	return v
}

// Content renders the browser body.
func (b *Browser) Content() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Runs"))
	sb.WriteString("\n\n")

	switch {
	case b.errMsg != "":
		sb.WriteString(lipgloss.NewStyle().Foreground(Error).Render("Error: " + b.errMsg))
		sb.WriteString("\n")
	case !b.loaded:
		sb.WriteString(dimStyle.Render("Loading runs..."))
		sb.WriteString("\n")
	default:
		b.writeRuns(&sb)
	}

	sb.WriteString("\n")
	if b.filtering || b.filter.Value() != "" {
		sb.WriteString(b.filter.View())
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render("↑↓ navigate · enter steps · / filter · q quit"))
	return sb.String()
}

func (b *Browser) writeRuns(sb *strings.Builder) {
	visible := b.visible()
	if len(visible) == 0 {
		sb.WriteString(dimStyle.Italic(true).Render("No runs found."))
		sb.WriteString("\n")
		return
	}

	for i, r := range visible {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(Text)
		if i == b.selected {
			prefix = "> "
			style = style.Foreground(Primary).Bold(true)
		}

		line := fmt.Sprintf("%s%-8s  %s  %-16s  %-8s  %2d steps",
			prefix,
			shortID(r.ID),
			r.CreatedAt.Local().Format("Jan 02 15:04"),
			truncate(r.Scenario, 16),
			r.Selector,
			r.StepCount,
		)
		sb.WriteString(style.Render(line))
		sb.WriteString("  ")
		sb.WriteString(deltaStyle(r.TotalIDS / float64(max(r.StepCount, 1))).Render(fmt.Sprintf("IDS %.3f", r.TotalIDS)))
		sb.WriteString("\n")

		if b.expanded[r.ID] {
			for _, st := range b.steps[r.ID] {
				d := trajectory.Decision{
					Action: trajectory.Action{T: st.T, Text: st.Action},
					Goal:   st.Goal,
					Delta:  st.Delta,
					Total:  st.TotalIDS,
				}
				sb.WriteString("    ")
				sb.WriteString(StepLine(d))
				sb.WriteString(" ")
				sb.WriteString(DriftBar(st.Delta, 10))
				sb.WriteString("\n")
			}
		}
	}
}

func shortID(id string) string {
	return truncate(id, 8)
}

// Browse runs the browser until the user quits.
func Browse(ctx context.Context, repo store.RunRepo) error {
	p := tea.NewProgram(NewBrowser(ctx, repo))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

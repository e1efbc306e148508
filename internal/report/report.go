// Package report renders scoring results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intentdrift/internal/goalgraph"
	"github.com/abhisek/intentdrift/internal/store"
	"github.com/abhisek/intentdrift/internal/trajectory"
)

// Printer writes reports to w. With color off every line is plain text.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// StepLine formats a scored decision as
// t=01 action='...' goal='...' delta=0.123 IDS=0.456.
func StepLine(d trajectory.Decision) string {
	return fmt.Sprintf("t=%02d action='%s' goal='%s' delta=%.3f IDS=%.3f",
		d.Action.T, d.Action.Text, d.Goal, d.Delta, d.Total)
}

// Step prints one decision. Skipped actions are reported as such.
func (p *Printer) Step(d trajectory.Decision) {
	if d.Skipped {
		fmt.Fprintln(p.w, p.render(dimStyle, fmt.Sprintf("t=%02d action='%s' skipped: no eligible goal", d.Action.T, d.Action.Text)))
		return
	}
	if !p.color {
		fmt.Fprintln(p.w, StepLine(d))
		return
	}

	line := fmt.Sprintf("%s action='%s' goal='%s' delta=%s IDS=%s %s",
		dimStyle.Render(fmt.Sprintf("t=%02d", d.Action.T)),
		d.Action.Text,
		goalStyle.Render(d.Goal),
		deltaStyle(d.Delta).Render(fmt.Sprintf("%.3f", d.Delta)),
		totalStyle.Render(fmt.Sprintf("%.3f", d.Total)),
		DriftBar(d.Delta, 10),
	)
	if d.Completed {
		line += " " + goalStyle.Render("✓ "+d.Goal)
	}
	fmt.Fprintln(p.w, line)
}

// Summary prints the final score, completed goals and the trace location.
func (p *Printer) Summary(res trajectory.Result, tracePath, runID string) {
	lines := []string{
		fmt.Sprintf("Final IDS: %s", p.render(totalStyle, fmt.Sprintf("%.3f", res.Report.TotalIDS))),
		fmt.Sprintf("Steps:     %d", len(res.Report.Steps)),
	}
	if len(res.Completed) > 0 {
		lines = append(lines, fmt.Sprintf("Completed: %s", strings.Join(res.Completed, ", ")))
	}
	if tracePath != "" {
		lines = append(lines, fmt.Sprintf("Trace:     %s", tracePath))
	}
	if runID != "" {
		lines = append(lines, fmt.Sprintf("Run:       %s", runID))
	}

	body := strings.Join(lines, "\n")
	fmt.Fprintln(p.w)
	if p.color {
		fmt.Fprintln(p.w, cardStyle.Render(body))
		return
	}
	fmt.Fprintln(p.w, body)
}

// Graph prints goals in topological order with rank, window and
// prerequisites.
func (p *Printer) Graph(g *goalgraph.Graph) error {
	goals, err := g.TopologicalOrder()
	if err != nil {
		return err
	}

	fmt.Fprintln(p.w, p.render(titleStyle, fmt.Sprintf("%-24s  %4s  %-10s  %s", "Goal", "Rank", "Window", "Prerequisites")))
	fmt.Fprintln(p.w, strings.Repeat("─", 64))
	for _, goal := range goals {
		rank, err := g.Rank(goal.Name)
		if err != nil {
			return err
		}
		window := "-"
		if goal.Window.Bounded() {
			window = goal.Window.String()
		}
		prereqs := "-"
		if len(goal.Prerequisites) > 0 {
			prereqs = strings.Join(goal.Prerequisites, ", ")
		}
		fmt.Fprintf(p.w, "%-24s  %4d  %-10s  %s\n", goal.Name, rank, window, prereqs)
	}
	return nil
}

// Runs prints stored runs, newest first.
func (p *Printer) Runs(runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.w, "No runs found.")
		return
	}

	fmt.Fprintln(p.w, p.render(titleStyle, fmt.Sprintf("%-36s  %-19s  %-16s  %-8s  %5s  %8s",
		"ID", "Created", "Scenario", "Selector", "Steps", "IDS")))
	fmt.Fprintln(p.w, strings.Repeat("─", 102))
	for _, r := range runs {
		fmt.Fprintf(p.w, "%-36s  %-19s  %-16s  %-8s  %5d  %8.3f\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Scenario, 16),
			r.Selector,
			r.StepCount,
			r.TotalIDS,
		)
	}
}

// Run prints one stored run with its steps.
func (p *Printer) Run(r *store.Run) {
	fmt.Fprintf(p.w, "ID:        %s\n", r.ID)
	fmt.Fprintf(p.w, "Time:      %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(p.w, "Scenario:  %s\n", r.Scenario)
	fmt.Fprintf(p.w, "Selector:  %s\n", r.Selector)
	fmt.Fprintf(p.w, "Encoder:   %s\n", r.Encoder)
	fmt.Fprintf(p.w, "Weights:   alpha=%g beta=%g gamma=%g\n", r.Alpha, r.Beta, r.Gamma)
	fmt.Fprintln(p.w)

	for _, st := range r.Steps {
		p.Step(trajectory.Decision{
			Action: trajectory.Action{T: st.T, Text: st.Action},
			Goal:   st.Goal,
			Delta:  st.Delta,
			Total:  st.TotalIDS,
		})
	}
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "Final IDS: %s\n", p.render(totalStyle, fmt.Sprintf("%.3f", r.TotalIDS)))
}

// DriftBar renders delta in [0, 1] as a horizontal bar of width cells.
// Values outside the range are clamped.
func DriftBar(delta float64, width int) string {
	if width < 1 {
		width = 1
	}
	filled := int(float64(width) * delta)
	filled = max(0, min(filled, width))

	return barFilled.Render(strings.Repeat(" ", filled)) +
		barEmpty.Render(strings.Repeat(" ", width-filled))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

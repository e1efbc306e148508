package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/intentdrift/internal/drift"
	"github.com/abhisek/intentdrift/internal/report"
	"github.com/abhisek/intentdrift/internal/store"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Browse stored runs (interactive on a terminal)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if !isTerminal(cmd.OutOrStdout()) {
			runs, err := s.RunRepo().List(cmd.Context(), store.QueryOpts{Limit: 20})
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			newPrinter(cmd).Runs(runs)
			return nil
		}
		return report.Browse(cmd.Context(), s.RunRepo())
	},
}

var traceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		name, _ := cmd.Flags().GetString("scenario")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.RunRepo().List(cmd.Context(), store.QueryOpts{Limit: limit, Scenario: name})
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		newPrinter(cmd).Runs(runs)
		return nil
	},
}

var traceViewCmd = &cobra.Command{
	Use:   "view <run-id>",
	Short: "Show every step of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := getRun(cmd, args[0])
		if err != nil {
			return err
		}
		newPrinter(cmd).Run(run)
		return nil
	},
}

var traceExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write a stored run as a JSON trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := getRun(cmd, args[0])
		if err != nil {
			return err
		}

		r := drift.Report{TotalIDS: run.TotalIDS, Steps: []drift.Step{}}
		for _, st := range run.Steps {
			r.Steps = append(r.Steps, drift.Step{
				T:      st.T,
				Action: st.Action,
				Goal:   st.Goal,
				Delta:  st.Delta,
				Total:  st.TotalIDS,
			})
		}

		out, _ := cmd.Flags().GetString("out")
		if err := drift.WriteReport(out, r); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return nil
	},
}

var traceRmCmd = &cobra.Command{
	Use:   "rm <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.RunRepo().Delete(cmd.Context(), args[0])
	},
}

func getRun(cmd *cobra.Command, id string) (*store.Run, error) {
	s, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	run, err := s.RunRepo().Get(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return run, nil
}

func init() {
	traceListCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	traceListCmd.Flags().String("scenario", "", "Only show runs of this scenario")
	traceExportCmd.Flags().StringP("out", "o", "ids_trace.json", "Output path")

	traceCmd.AddCommand(traceListCmd)
	traceCmd.AddCommand(traceViewCmd)
	traceCmd.AddCommand(traceExportCmd)
	traceCmd.AddCommand(traceRmCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/intentdrift/internal/drift"
	"github.com/abhisek/intentdrift/internal/goalgraph"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Break down the penalty of a single action against a goal",
	Example: `  ids score --action "book hotel near Times Square" --goal book_hotel --goal-rank 2 --t 6 --window 2,4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		action, _ := cmd.Flags().GetString("action")
		goal, _ := cmd.Flags().GetString("goal")
		goalRank, _ := cmd.Flags().GetInt("goal-rank")
		t, _ := cmd.Flags().GetInt("t")

		stepRank := goalRank
		if cmd.Flags().Changed("step-rank") {
			stepRank, _ = cmd.Flags().GetInt("step-rank")
		}

		window := goalgraph.Unbounded()
		if w, _ := cmd.Flags().GetIntSlice("window"); len(w) > 0 {
			if len(w) != 2 {
				return fmt.Errorf("--window takes two values: low,high")
			}
			window = goalgraph.NewWindow(w[0], w[1])
		}

		dcfg, err := scorerConfig(cmd, nil)
		if err != nil {
			return err
		}
		enc, err := buildEncoder(cmd.Context())
		if err != nil {
			return err
		}
		scorer := drift.New(dcfg, drift.WithEncoder(enc), drift.WithLogger(logger))

		obs := drift.Observation{
			T:        t,
			Action:   action,
			Goal:     goal,
			GoalRank: goalRank,
			StepRank: stepRank,
			Window:   window,
		}
		b, err := scorer.Breakdown(cmd.Context(), obs)
		if err != nil {
			return err
		}
		delta, _, err := scorer.UpdateStep(cmd.Context(), obs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "semantic    %.6f  x alpha %g\n", b.Semantic, dcfg.Alpha)
		fmt.Fprintf(out, "structural  %.6f  x beta  %g\n", b.Structural, dcfg.Beta)
		fmt.Fprintf(out, "temporal    %.6f  x gamma %g\n", b.Temporal, dcfg.Gamma)
		fmt.Fprintf(out, "delta       %.6f\n", delta)
		return nil
	},
}

func init() {
	scoreCmd.Flags().String("action", "", "Action text")
	scoreCmd.Flags().String("goal", "", "Goal name")
	scoreCmd.Flags().Int("goal-rank", 1, "Structural rank of the goal")
	scoreCmd.Flags().Int("step-rank", 0, "Rank the action reached (default: goal rank)")
	scoreCmd.Flags().Int("t", 1, "Time index of the action")
	scoreCmd.Flags().IntSlice("window", nil, "Goal window as low,high (default: unbounded)")
	addWeightFlags(scoreCmd)
	_ = scoreCmd.MarkFlagRequired("action")
	_ = scoreCmd.MarkFlagRequired("goal")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/intentdrift/internal/drift"
	"github.com/abhisek/intentdrift/internal/transport"
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Compute the Sinkhorn transport cost between two sets of texts",
	Example: `  ids cost --a "search flights" --a "book flight" --b "book hotel"
  ids cost --a "x" --b "y" --reg 0.5 --iterations 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _ := cmd.Flags().GetStringArray("a")
		b, _ := cmd.Flags().GetStringArray("b")
		if len(a) == 0 || len(b) == 0 {
			return fmt.Errorf("both --a and --b need at least one text")
		}

		dcfg, err := scorerConfig(cmd, nil)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("reg") {
			dcfg.Transport.Reg, _ = cmd.Flags().GetFloat64("reg")
		}
		if cmd.Flags().Changed("iterations") {
			dcfg.Transport.Iterations, _ = cmd.Flags().GetInt("iterations")
		}
		if err := dcfg.Validate(); err != nil {
			return err
		}

		enc, err := buildEncoder(cmd.Context())
		if err != nil {
			return err
		}

		scorer := drift.New(dcfg, drift.WithEncoder(enc), drift.WithLogger(logger))
		cost, err := scorer.TransportCost(cmd.Context(), a, b)
		if err != nil {
			return err
		}

		if transport.IsDegenerate(cost) {
			logger.Warn().
				Float64("reg", dcfg.Transport.Reg).
				Msg("transport cost is not finite; the kernel underflowed, try a larger --reg")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", cost)
		return nil
	},
}

func init() {
	costCmd.Flags().StringArray("a", nil, "Text in the first cloud (repeatable)")
	costCmd.Flags().StringArray("b", nil, "Text in the second cloud (repeatable)")
	costCmd.Flags().Float64("reg", 0, "Entropic regularization (default from config: 0.05)")
	costCmd.Flags().Int("iterations", 0, "Sinkhorn iterations (default from config: 30)")
	costCmd.Flags().String("encoder", "", "Text encoder: hash or provider")
}

package cmd

import (
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [scenario.yaml]",
	Short: "Show goals with rank, window and prerequisites",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(args)
		if err != nil {
			return err
		}
		g := sc.Graph()
		if err := g.Validate(); err != nil {
			return err
		}
		return newPrinter(cmd).Graph(g)
	},
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/intentdrift/internal/config"
	"github.com/abhisek/intentdrift/internal/logging"
	"github.com/abhisek/intentdrift/internal/report"
	"github.com/abhisek/intentdrift/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "ids",
	Short: "Score how far an agent drifts from its goals",
	Long: "ids computes the Intent Drift Score of an agent trajectory: a running penalty of\n" +
		"semantic distance, structural shortfall and temporal lateness against a goal graph.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// Loaded by setup before any subcommand runs.
var (
	cfg      *config.Config
	logger   = zerolog.Nop()
	closeLog = func() error { return nil }
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides IDS_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./ids.yaml or the user config dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(costCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		c.Log.Level = lvl
	}

	opts := c.LogOptions()
	opts.Writer = cmd.ErrOrStderr()
	l, closeFn, err := logging.New(opts)
	if err != nil {
		return err
	}

	cfg, logger, closeLog = c, l, closeFn
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (IDS_DB or config file), then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return cfg.DBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug().Str("path", dbPath).Msg("store opened")
	return s, nil
}

// newPrinter colors output only on a terminal, unless disabled by
// --no-color or NO_COLOR.
func newPrinter(cmd *cobra.Command) *report.Printer {
	out := cmd.OutOrStdout()
	color := isTerminal(out)
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor || os.Getenv("NO_COLOR") != "" {
		color = false
	}
	return report.NewPrinter(out, color)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

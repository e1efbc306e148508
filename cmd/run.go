package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/intentdrift/internal/config"
	"github.com/abhisek/intentdrift/internal/drift"
	"github.com/abhisek/intentdrift/internal/encoder"
	"github.com/abhisek/intentdrift/internal/llm"
	"github.com/abhisek/intentdrift/internal/scenario"
	"github.com/abhisek/intentdrift/internal/store"
	"github.com/abhisek/intentdrift/internal/trajectory"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario.yaml]",
	Short: "Score a trajectory (default: the built-in travel demo)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sc, err := loadScenario(args)
		if err != nil {
			return err
		}

		dcfg, err := scorerConfig(cmd, sc)
		if err != nil {
			return err
		}

		var st *store.Store
		noStore, _ := cmd.Flags().GetBool("no-store")
		if cfg.Run.Store && !noStore {
			st, err = openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
		}

		enc, err := buildEncoder(ctx)
		if err != nil {
			return err
		}

		selector, err := buildSelector(cmd, st)
		if err != nil {
			return err
		}

		scorer := drift.New(dcfg, drift.WithEncoder(enc), drift.WithLogger(logger))
		printer := newPrinter(cmd)

		runner := trajectory.NewRunner(scorer)
		runner.Selector = selector
		runner.Completion = sc.Completion()
		runner.Logger = logger
		runner.OnDecision = printer.Step

		res, err := runner.Run(ctx, sc.Graph(), sc.Actions())
		if err != nil {
			return err
		}

		out := cfg.Run.Out
		if cmd.Flags().Changed("out") {
			out, _ = cmd.Flags().GetString("out")
		}
		if out != "" {
			if err := drift.WriteReport(out, res.Report); err != nil {
				return err
			}
		}

		var runID string
		if st != nil {
			runID = uuid.NewString()
			run := newStoredRun(runID, sc.Name, selector.Name(), enc.Name(), dcfg, res)
			if err := st.RunRepo().Save(ctx, run); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
		}

		printer.Summary(res, out, runID)
		return nil
	},
}

func init() {
	runCmd.Flags().String("selector", "", "Goal selection policy: first, pending or llm (default from config: first)")
	runCmd.Flags().StringP("out", "o", "", "Trace output path; empty disables export (default from config: ids_trace.json)")
	runCmd.Flags().Bool("no-store", false, "Do not save the run to the database")
	addWeightFlags(runCmd)
}

func addWeightFlags(c *cobra.Command) {
	c.Flags().Float64("alpha", 0, "Semantic distance weight")
	c.Flags().Float64("beta", 0, "Structural penalty weight")
	c.Flags().Float64("gamma", 0, "Temporal penalty weight")
	c.Flags().String("encoder", "", "Action/goal encoder: hash or provider")
}

func loadScenario(args []string) (*scenario.Scenario, error) {
	if len(args) == 0 {
		return scenario.Travel(), nil
	}
	return scenario.Load(args[0])
}

// scorerConfig layers config file/env, scenario weights and flags, in
// increasing priority.
func scorerConfig(cmd *cobra.Command, sc *scenario.Scenario) (drift.Config, error) {
	dcfg := cfg.Scorer.Config
	if sc != nil {
		dcfg = sc.ApplyWeights(dcfg)
	}
	for name, dst := range map[string]*float64{"alpha": &dcfg.Alpha, "beta": &dcfg.Beta, "gamma": &dcfg.Gamma} {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetFloat64(name)
		}
	}
	if cmd.Flags().Changed("encoder") {
		cfg.Scorer.Encoder, _ = cmd.Flags().GetString("encoder")
	}

	cfg.Scorer.Config = dcfg
	if err := cfg.Validate(); err != nil {
		return drift.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return dcfg, nil
}

func buildEncoder(ctx context.Context) (encoder.Encoder, error) {
	if cfg.Scorer.Encoder != config.EncoderProvider {
		return encoder.NewHashEncoder(), nil
	}
	emb, err := llm.NewEmbedder(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	return encoder.NewProviderEncoder(emb), nil
}

func buildSelector(cmd *cobra.Command, st *store.Store) (trajectory.Selector, error) {
	name := cfg.Run.Selector
	if cmd.Flags().Changed("selector") {
		name, _ = cmd.Flags().GetString("selector")
	}
	if name != "llm" {
		return trajectory.NewSelector(name)
	}

	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("the llm selector needs a provider: set IDS_LLM_PROVIDER or a provider API key")
	}
	var events store.EventRepo
	if st != nil {
		events = st.EventRepo()
	}
	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, events, logger)
	if err != nil {
		return nil, err
	}
	return trajectory.NewLLMSelector(provider, trajectory.DefaultLLMSelectorConfig(), logger), nil
}

func newStoredRun(id, name, selector, enc string, dcfg drift.Config, res trajectory.Result) *store.Run {
	run := &store.Run{
		ID:       id,
		Scenario: name,
		Selector: selector,
		Encoder:  enc,
		TotalIDS: res.Report.TotalIDS,
		Alpha:    dcfg.Alpha,
		Beta:     dcfg.Beta,
		Gamma:    dcfg.Gamma,
	}
	for _, s := range res.Report.Steps {
		run.Steps = append(run.Steps, store.RunStep{
			T:        s.T,
			Action:   s.Action,
			Goal:     s.Goal,
			Delta:    s.Delta,
			TotalIDS: s.Total,
		})
	}
	return run
}

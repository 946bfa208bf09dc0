package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-sod/b2t/internal/buildinfo"
	"github.com/go-sod/b2t/internal/bundle"
	b2t "github.com/go-sod/b2t/internal/config"
	"github.com/go-sod/b2t/internal/logging"
	"github.com/go-sod/b2t/internal/pipeline"
	"github.com/go-sod/b2t/internal/setup"
	"github.com/go-sod/b2t/internal/shutdown"
)

var configFile string

func main() {
	ctx, done := shutdown.New()
	defer done()

	root := &cobra.Command{
		Use:           "b2t",
		Short:         "decode text from neural recordings by nearest-neighbour search",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "TOML or YAML config file (overrides B2T_CONFIG_FILE)")
	root.AddCommand(featurizeCmd(), trainCmd(), predictCmd(), evaluateCmd(), runCmd(), versionCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		logging.FromContext(ctx).Error(err)
		done()
		os.Exit(1)
	}
}

func newPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	if configFile != "" {
		if err := os.Setenv("B2T_CONFIG_FILE", configFile); err != nil {
			return nil, err
		}
	}
	config := b2t.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return nil, fmt.Errorf("setup.Setup: %w", err)
	}
	return pipeline.New(env)
}

func featurizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "featurize [split...]",
		Short: "extract windowed features for the given splits (default: train val test)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{bundle.SplitTrain, bundle.SplitVal, bundle.SplitTest}
			}
			for _, split := range args {
				if _, err := p.Featurize(ctx, split); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "fit the decoder on the train features and save the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			_, err = p.Train(ctx)
			return err
		},
	}
}

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict [split]",
		Short: "write ranked predictions for a split (default: test)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			split := bundle.SplitTest
			if len(args) == 1 {
				split = args[0]
			}
			_, err = p.Predict(ctx, split)
			return err
		},
	}
}

func evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate [split]",
		Short: "score predictions against the labels of a split (default: val)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			split := bundle.SplitVal
			if len(args) == 1 {
				split = args[0]
			}
			m, err := p.Evaluate(ctx, split)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "top1_accuracy=%.4f topk_accuracy=%.4f n_examples=%d\n",
				m.Top1Accuracy, m.TopKAccuracy, m.NExamples)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "featurize, train, evaluate on val and predict test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, _ = fmt.Fprint(cmd.OutOrStdout(), buildinfo.Graffiti)
			p, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			m, err := p.Run(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "val top1_accuracy=%.4f topk_accuracy=%.4f n_examples=%d\n",
				m.Top1Accuracy, m.TopKAccuracy, m.NExamples)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Info.Print("b2t"))
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"svmclassifier/internal/config"
	"svmclassifier/internal/experiment"
	"svmclassifier/internal/logging"
)

type trainOptions struct {
	configFile string
	dataFile   string
	weights    string
	output     string
	logLevel   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts trainOptions

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Tune, evaluate and fit a linear SVM on a labelled CSV file",
		Long: `Loads a headerless CSV (id, features..., label), tunes C with a randomized
search, reports cross-validated accuracy, precision and recall, and writes the
weights of a classifier refitted on all rows.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			logger, err := logging.NewLogger(cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			logger.Info("starting training run",
				zap.String("config", opts.configFile),
				zap.String("data", cfg.Data.Input))

			_, err = experiment.NewRunner(cfg, logger, cmd.OutOrStdout()).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "config/config.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&opts.dataFile, "data", "", "Path to the input CSV file (overrides data.input)")
	cmd.Flags().StringVar(&opts.weights, "weights", "", "Path of the weights file (overrides output.weights)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Path of the summary file (overrides output.summary)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides logging.level)")

	return cmd
}

// loadConfig reads the configuration file and applies the flags the user
// set explicitly.
func loadConfig(cmd *cobra.Command, opts trainOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Input = opts.dataFile
	}
	if flags.Changed("weights") {
		cfg.Output.Weights = opts.weights
	}
	if flags.Changed("output") {
		cfg.Output.Summary = opts.output
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	return cfg, nil
}

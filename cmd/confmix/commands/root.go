package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openfroyo/confmix/pkg/config"
	"github.com/openfroyo/confmix/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ErrFailed is returned when a command reported error records. The records
// have already been printed.
var ErrFailed = errors.New("errors reported")

var (
	// Global flags
	jsonOutput   bool
	logLevel     string
	traceEnabled bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	var tel *telemetry.Telemetry

	rootCmd := &cobra.Command{
		Use:   "confmix",
		Short: "confmix - layered configuration resolver",
		Long: `confmix resolves declarative, multi-layered infrastructure configuration.

Commands:
  - validate values against schema documents
  - mix parameters from dictionaries and layers
  - assign dependency windows to node replicas
  - resolve whole stacks in one pass

Documents may be YAML, JSON, CUE or Starlark.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := telemetry.DefaultConfig()
			cfg.ServiceVersion = version
			cfg.Logging.Level = logLevel
			if traceEnabled {
				cfg.Tracing.Enabled = true
				cfg.Tracing.Exporter = "stdout"
			}

			if level, err := zerolog.ParseLevel(logLevel); err == nil {
				zerolog.SetGlobalLevel(level)
			}

			var err error
			tel, err = telemetry.NewTelemetry(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialise telemetry: %w", err)
			}
			cmd.SetContext(tel.WithContext(cmd.Context()))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if tel == nil {
				return nil
			}
			return tel.Shutdown(context.Background())
		},
	}

	defaultLevel := os.Getenv("LOG_LEVEL")
	if defaultLevel == "" {
		defaultLevel = "warn"
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "export trace spans to stderr")

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newMixCommand())
	rootCmd.AddCommand(newWindowsCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newMetaCommand())

	return rootCmd
}

// newLoader returns a document loader wired to the command's telemetry.
func newLoader(cmd *cobra.Command) *config.Loader {
	tel := commandTelemetry(cmd)
	return config.NewLoader(config.WithLogger(tel.Logger), config.WithMetrics(tel.Metrics))
}

func commandTelemetry(cmd *cobra.Command) *telemetry.Telemetry {
	if tel := telemetry.FromTelemetryContext(cmd.Context()); tel != nil {
		return tel
	}
	return telemetry.Nop()
}

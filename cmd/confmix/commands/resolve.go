package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/openfroyo/confmix/pkg/config"
	"github.com/openfroyo/confmix/pkg/engine"
	"github.com/openfroyo/confmix/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newResolveCommand() *cobra.Command {
	var (
		schemaPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <stack>",
		Short: "Resolve a stack: mix, validate and assign windows",
		Long: `Resolve every node of a stack in one pass.

For each node the parameter layers are mixed, the result is validated
against the node's schema (or the document root) when --schema is given,
and dependency windows are assigned to its replicas. Errors of one node
do not stop the others.

With --watch the stack and schema documents are watched and the stack is
resolved again after every change until interrupted.`,
		Example: `  # Resolve without validation
  confmix resolve stack.yaml

  # Validate parameters and keep watching
  confmix resolve --schema schema.cue --watch stack.star`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tel := commandTelemetry(cmd)
			loader := newLoader(cmd)
			stackPath := args[0]

			run := func() error {
				return resolveOnce(ctx, cmd, loader, tel, stackPath, schemaPath)
			}

			if !watch {
				return run()
			}

			if err := run(); err != nil && !errors.Is(err, ErrFailed) {
				log.Error().Err(err).Msg("Resolution failed")
			}

			paths := []string{stackPath}
			if schemaPath != "" {
				paths = append(paths, schemaPath)
			}
			return loader.Watch(ctx, paths, func(changed []string) {
				log.Info().Strs("changed", changed).Msg("Documents changed, resolving again")
				if err := run(); err != nil && !errors.Is(err, ErrFailed) {
					log.Error().Err(err).Msg("Resolution failed")
				}
			})
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema document used to validate mixed parameters")
	cmd.Flags().BoolVar(&watch, "watch", false, "resolve again whenever a document changes")

	return cmd
}

func resolveOnce(ctx context.Context, cmd *cobra.Command, loader *config.Loader, tel *telemetry.Telemetry, stackPath, schemaPath string) error {
	opts := []engine.Option{engine.WithLogger(tel.Logger), engine.WithMetrics(tel.Metrics)}

	var resolver *engine.Resolver
	if schemaPath != "" {
		doc, errs, err := loader.LoadSchema(ctx, schemaPath)
		if err != nil {
			return err
		}
		if err := report(cmd.ErrOrStderr(), errs); err != nil {
			return err
		}
		resolver = engine.NewResolver(doc, opts...)
	} else {
		resolver = engine.NewResolver(nil, opts...)
	}

	stack, err := loader.LoadStack(ctx, stackPath)
	if err != nil {
		return fmt.Errorf("failed to load stack: %w", err)
	}

	res, errs := resolver.Resolve(ctx, stack)
	if err := printResult(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	return report(cmd.ErrOrStderr(), errs)
}

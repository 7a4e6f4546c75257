package commands

import (
	"github.com/openfroyo/confmix/pkg/schema"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type validateOutput struct {
	Valid  bool   `json:"valid" yaml:"valid"`
	Root   string `json:"root" yaml:"root"`
	Errors int    `json:"errors" yaml:"errors"`
}

func newValidateCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "validate <schema> <value>",
		Short: "Validate a value document against a schema document",
		Long: `Validate a value document against a schema document.

The schema document is first checked against the bootstrap meta-schema.
Every problem is reported, one per line, as a trail of schema name, value
path and message.`,
		Example: `  # Validate against the document root
  confmix validate schema.yaml values.yaml

  # Validate against a named definition
  confmix validate --root service schema.yaml api.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tel := commandTelemetry(cmd)
			loader := newLoader(cmd)

			doc, errs, err := loader.LoadSchema(ctx, args[0])
			if err != nil {
				return err
			}
			if err := report(cmd.ErrOrStderr(), errs); err != nil {
				return err
			}

			value, err := loader.Load(ctx, args[1])
			if err != nil {
				return err
			}

			log.Debug().
				Str("schema", args[0]).
				Str("value", args[1]).
				Str("root", root).
				Msg("Validating value")

			v := schema.NewValidator(doc, schema.WithLogger(tel.Logger), schema.WithMetrics(tel.Metrics))
			errs = v.Validate(ctx, root, value)

			effective := root
			if effective == "" {
				effective = doc.Root
			}
			out := validateOutput{Valid: len(errs) == 0, Root: effective, Errors: len(errs)}
			if err := printResult(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return report(cmd.ErrOrStderr(), errs)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "schema definition to validate against (default: document root)")

	return cmd
}

package commands

import (
	"github.com/openfroyo/confmix/pkg/schema"
	"github.com/spf13/cobra"
)

func newMetaCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Print the bootstrap meta-schema",
		Long: `Print the bootstrap meta-schema that every schema document is checked
against. With --check the meta-schema is validated against itself.`,
		Example: `  # Print as YAML
  confmix meta

  # Verify the meta-schema describes itself
  confmix meta --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check {
				return report(cmd.ErrOrStderr(), schema.CheckDocument(schema.MetaSource()))
			}
			if jsonOutput {
				return printResult(cmd.OutOrStdout(), schema.MetaSource())
			}
			_, err := cmd.OutOrStdout().Write(schema.MetaYAML())
			return err
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "validate the meta-schema against itself")

	return cmd
}

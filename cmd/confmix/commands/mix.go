package commands

import (
	"github.com/openfroyo/confmix/pkg/params"
	"github.com/spf13/cobra"
)

func newMixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mix <layers>",
		Short: "Mix parameters from dictionaries and layers",
		Long: `Mix parameters from a layers document.

The document holds the three dictionaries (group_params_dict,
shared_params_dict, shared_group_params_dict) and the four layers
(shared_group_params, shared_params, group_params, params). Later layers
override earlier ones. Unknown dictionary keys are reported and the
result is omitted.`,
		Example: `  # Mix a layers document
  confmix mix layers.yaml

  # Emit JSON
  confmix mix --json layers.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tel := commandTelemetry(cmd)

			layers, err := newLoader(cmd).LoadLayers(ctx, args[0])
			if err != nil {
				return err
			}

			mixer := params.NewMixer(params.WithLogger(tel.Logger), params.WithMetrics(tel.Metrics))
			res := mixer.Resolve(ctx, layers)
			if err := printResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			return report(cmd.ErrOrStderr(), res.Errors)
		},
	}

	return cmd
}

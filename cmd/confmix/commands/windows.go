package commands

import (
	"github.com/openfroyo/confmix/pkg/depwindow"
	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/engine"
	"github.com/spf13/cobra"
)

func newWindowsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "windows <stack>",
		Short: "Assign dependency windows to node replicas",
		Long: `Assign dependency windows to the replicas of every node in a stack.

Each replica receives a primary host and a window of hosts for every
named dependency. Parameters are not mixed or validated; use resolve for
the full pipeline.`,
		Example: `  # Show windows for a stack
  confmix windows stack.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tel := commandTelemetry(cmd)

			stack, err := newLoader(cmd).LoadStack(ctx, args[0])
			if err != nil {
				return err
			}

			nodes, errs := windowNodes(stack)
			resolver := depwindow.NewResolver(depwindow.WithLogger(tel.Logger), depwindow.WithMetrics(tel.Metrics))
			result, windowErrs := resolver.Resolve(ctx, nodes, stack.Hosts)
			errs = append(errs, windowErrs...)

			if err := printResult(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			return report(cmd.ErrOrStderr(), errs)
		},
	}

	return cmd
}

// windowNodes indexes the stack's nodes by name. Later duplicates are
// reported and ignored.
func windowNodes(stack *engine.Stack) (map[string]depwindow.Node, diag.List) {
	var errs diag.List
	nodes := make(map[string]depwindow.Node, len(stack.Nodes))
	for _, n := range stack.Nodes {
		if _, dup := nodes[n.Name]; dup {
			errs = append(errs, diag.New(diag.ClassDuplicate, n.Name, "duplicate node name"))
			continue
		}
		nodes[n.Name] = n.Window()
	}
	return nodes, errs
}

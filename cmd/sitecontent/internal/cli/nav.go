package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitecontent/cmd/sitecontent/internal/bootstrap"
)

func newNavCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Print the resolved navigation menu",
		Long:  "Print the navigation menu, falling back to the built-in links when the CMS has none.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModule(cmd.Context(), flags.options(), func(ctx context.Context, m *bootstrap.Module) error {
				return printJSON(cmd.OutOrStdout(), m.Module.Site().Navigation(ctx))
			})
		},
	}
}

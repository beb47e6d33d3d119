package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitecontent/cmd/sitecontent/internal/bootstrap"
)

func newStatusCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the cache state restored from snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			off := false
			opts.KeepAlive = &off
			return withModule(cmd.Context(), opts, func(ctx context.Context, m *bootstrap.Module) error {
				if err := m.Module.Start(ctx); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m.Module.Statuses())
			})
		},
	}
}

package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitecontent/cmd/sitecontent/internal/bootstrap"
	sitecmd "github.com/goliatone/go-sitecontent/internal/commands/site"
)

type warmOutput struct {
	Statuses any    `json:"statuses"`
	Saved    int    `json:"saved"`
	Error    string `json:"error,omitempty"`
}

func newWarmCommand(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Load every resource and persist listing snapshots",
		Long: `Load every stale or empty resource once. With --force every resource is
refetched. Fresh listings are written to the snapshot store when enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModule(cmd.Context(), flags.options(), func(ctx context.Context, m *bootstrap.Module) error {
				set := m.Module.Commands()
				if set == nil || set.Warm == nil {
					return errors.New("warm command not registered")
				}
				svc := m.Module.Site()
				if _, err := svc.Hydrate(ctx); err != nil {
					m.Logger.Warn("site.cli.warm.hydrate_failed", "error", err)
				}

				out := warmOutput{}
				err := set.Warm.Execute(ctx, sitecmd.WarmSiteCommand{
					Force: force,
					ResultCallback: func(env sitecmd.ResultEnvelope) {
						out.Statuses = env.Metadata["statuses"]
					},
				})
				if out.Statuses == nil {
					out.Statuses = m.Module.Statuses()
				}
				saved, saveErr := svc.SaveSnapshots(ctx)
				out.Saved = saved
				err = errors.Join(err, saveErr)
				if err != nil {
					out.Error = err.Error()
				}
				if printErr := printJSON(cmd.OutOrStdout(), out); printErr != nil {
					return printErr
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "refetch resources even when fresh")
	return cmd
}

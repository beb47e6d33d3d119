package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitecontent/cmd/sitecontent/internal/bootstrap"
	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/site"
)

type fetchOutput struct {
	Resource      string    `json:"resource"`
	Key           string    `json:"key"`
	Status        string    `json:"status"`
	LastFetchedAt time.Time `json:"lastFetchedAt"`
	Failures      int       `json:"failures,omitempty"`
	Error         string    `json:"error,omitempty"`
	Data          any       `json:"data"`
}

func newFetchCommand(flags *globalFlags) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "fetch <resource>",
		Short: "Fetch one resource and print its transformed listing",
		Long: `Fetch one resource through the query cache and print it as JSON.

Resources: ` + strings.Join(site.Names(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return withModule(cmd.Context(), flags.options(), func(ctx context.Context, m *bootstrap.Module) error {
				svc := m.Module.Site()
				if _, err := svc.Resource(name); err != nil {
					return err
				}
				if _, err := svc.Hydrate(ctx); err != nil {
					m.Logger.Warn("site.cli.fetch.hydrate_failed", "error", err)
				}

				var (
					state query.State
					err   error
				)
				if refresh {
					state, err = svc.Refetch(ctx, name)
				} else {
					state, err = svc.Load(ctx, name)
				}
				if printErr := printJSON(cmd.OutOrStdout(), newFetchOutput(name, state)); printErr != nil {
					return printErr
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached data and refetch")
	return cmd
}

func newFetchOutput(name string, state query.State) fetchOutput {
	out := fetchOutput{
		Resource:      name,
		Key:           state.Key.String(),
		Status:        state.Status.String(),
		LastFetchedAt: state.LastFetchedAt,
		Failures:      state.FailureCount,
		Data:          state.Data,
	}
	if state.Error != nil {
		out.Error = state.Error.Error()
	}
	return out
}

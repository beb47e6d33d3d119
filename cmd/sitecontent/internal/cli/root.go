package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitecontent/cmd/sitecontent/internal/bootstrap"
)

var moduleBuilder bootstrap.Builder = bootstrap.BuildModule

type globalFlags struct {
	configPath string
	logLevel   string
	cmsURL     string
}

// NewRootCommand assembles the sitecontent command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "sitecontent",
		Short: "Keep the legal site content cache warm and serve it",
		Long: `sitecontent loads site content from the CMS into a keyed query cache and
serves presentation-ready view models over HTTP.

Configuration is read from --config (YAML) and SITECONTENT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", os.Getenv("SITECONTENT_CONFIG"), "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&flags.cmsURL, "cms-url", "", "override the CMS base URL")

	rootCmd.AddCommand(
		newServeCommand(flags),
		newFetchCommand(flags),
		newNavCommand(flags),
		newWarmCommand(flags),
		newStatusCommand(flags),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (f *globalFlags) options() bootstrap.Options {
	return bootstrap.Options{
		ConfigPath: f.configPath,
		LogLevel:   f.logLevel,
		CMSURL:     f.cmsURL,
	}
}

// withModule builds a module for one command run and closes it afterwards.
func withModule(ctx context.Context, opts bootstrap.Options, fn func(context.Context, *bootstrap.Module) error) (err error) {
	module, err := moduleBuilder(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := module.Module.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(ctx, module)
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

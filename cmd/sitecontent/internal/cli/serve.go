package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitecontent/cmd/sitecontent/internal/bootstrap"
)

const defaultShutdownTimeout = 10 * time.Second

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		addr      string
		keepAlive bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site view API",
		Long: `Restore snapshots, keep every resource subscribed and serve the view API
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			if cmd.Flags().Changed("keep-alive") {
				opts.KeepAlive = &keepAlive
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withModule(ctx, opts, func(ctx context.Context, m *bootstrap.Module) error {
				return serve(ctx, m, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().BoolVar(&keepAlive, "keep-alive", true, "subscribe every resource for the lifetime of the server")
	return cmd
}

func serve(ctx context.Context, m *bootstrap.Module, addr string) error {
	cfg := m.Module.Container().Config.Server
	if addr == "" {
		addr = cfg.Addr
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	handler, err := m.Module.Handler()
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}
	if err := m.Module.Start(ctx); err != nil {
		return fmt.Errorf("start module: %w", err)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	failed := make(chan error, 1)
	go func() {
		m.Logger.Info("site.cli.serve.listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	m.Logger.Info("site.cli.serve.shutdown", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

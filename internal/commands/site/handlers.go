package sitecmd

import (
	"context"
	"strconv"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-sitecontent/internal/commands"
	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/site"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// SiteService is the part of *site.Service the handlers drive.
type SiteService interface {
	Refetch(ctx context.Context, name string) (query.State, error)
	Warm(ctx context.Context) error
	RefetchAll(ctx context.Context) error
	Statuses() []site.ResourceStatus
}

// CacheInvalidator marks keys stale. *query.Client satisfies it.
type CacheInvalidator interface {
	Invalidate(prefix query.Key) int
}

var (
	_ command.Commander[RefetchResourceCommand]  = (*RefetchResourceHandler)(nil)
	_ command.Commander[InvalidatePrefixCommand] = (*InvalidatePrefixHandler)(nil)
	_ command.Commander[WarmSiteCommand]         = (*WarmSiteHandler)(nil)
)

// RefetchResourceHandler refetches one resource.
type RefetchResourceHandler struct {
	inner *commands.Handler[RefetchResourceCommand]
}

// NewRefetchResourceHandler wires the handler to service.
func NewRefetchResourceHandler(service SiteService, logger interfaces.Logger, opts ...commands.HandlerOption[RefetchResourceCommand]) *RefetchResourceHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg RefetchResourceCommand) error {
		state, err := service.Refetch(ctx, msg.Resource)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			States:   []query.State{state},
			Metadata: map[string]any{"operation": "refetch", "resource": msg.Resource},
		})
		if err != nil {
			return err
		}
		baseLogger.Debug("site.command.refetched", "resource", msg.Resource, "status", state.Status.String())
		return nil
	}
	handlerOpts := []commands.HandlerOption[RefetchResourceCommand]{
		commands.WithLogger[RefetchResourceCommand](baseLogger),
		commands.WithOperation[RefetchResourceCommand]("site.resource.refetch"),
	}
	return &RefetchResourceHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[RefetchResourceCommand].
func (h *RefetchResourceHandler) Execute(ctx context.Context, msg RefetchResourceCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CLIHandler exposes the handler to CLI integrations.
func (h *RefetchResourceHandler) CLIHandler() any { return h }

// CLIOptions describes the CLI metadata for refetch.
func (h *RefetchResourceHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"site", "refetch"},
		Group:       "site",
		Description: "Refetch one content resource ignoring freshness",
	}
}

// InvalidatePrefixHandler marks keys stale. Observed keys refetch at once;
// the rest refetch on next use.
type InvalidatePrefixHandler struct {
	inner *commands.Handler[InvalidatePrefixCommand]
}

// NewInvalidatePrefixHandler wires the handler to cache.
func NewInvalidatePrefixHandler(cache CacheInvalidator, logger interfaces.Logger, opts ...commands.HandlerOption[InvalidatePrefixCommand]) *InvalidatePrefixHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(_ context.Context, msg InvalidatePrefixCommand) error {
		key := msg.Key()
		matched := cache.Invalidate(key)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Matched:  matched,
			Metadata: map[string]any{"operation": "invalidate", "prefix": key.String()},
		})
		baseLogger.Debug("site.command.invalidated", "prefix", key.String(), "matched", matched)
		return nil
	}
	handlerOpts := []commands.HandlerOption[InvalidatePrefixCommand]{
		commands.WithLogger[InvalidatePrefixCommand](baseLogger),
		commands.WithOperation[InvalidatePrefixCommand]("site.cache.invalidate"),
	}
	return &InvalidatePrefixHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[InvalidatePrefixCommand].
func (h *InvalidatePrefixHandler) Execute(ctx context.Context, msg InvalidatePrefixCommand) error {
	return h.inner.Execute(ctx, msg)
}

// WarmSiteHandler loads every resource and doubles as a cron job.
type WarmSiteHandler struct {
	inner      *commands.Handler[WarmSiteCommand]
	cronConfig command.HandlerConfig
	observer   commands.Observer
}

// WarmOption customises the warm handler.
type WarmOption func(*WarmSiteHandler)

// WarmWithCronExpression overrides the schedule reported by CronOptions.
func WarmWithCronExpression(expression string) WarmOption {
	return func(h *WarmSiteHandler) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			h.cronConfig.Expression = trimmed
		}
	}
}

// WarmWithObserver reports every warm outcome to observer.
func WarmWithObserver(observer commands.Observer) WarmOption {
	return func(h *WarmSiteHandler) {
		h.observer = observer
	}
}

// NewWarmSiteHandler wires the handler to service.
func NewWarmSiteHandler(service SiteService, logger interfaces.Logger, opts ...WarmOption) *WarmSiteHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg WarmSiteCommand) error {
		var err error
		if msg.Force {
			err = service.RefetchAll(ctx)
		} else {
			err = service.Warm(ctx)
		}
		statuses := service.Statuses()
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Metadata: map[string]any{"operation": "warm", "force": msg.Force, "statuses": statuses},
		})
		return err
	}
	h := &WarmSiteHandler{
		cronConfig: command.HandlerConfig{Expression: "@every 5m"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	handlerOpts := []commands.HandlerOption[WarmSiteCommand]{
		commands.WithLogger[WarmSiteCommand](baseLogger),
		commands.WithOperation[WarmSiteCommand]("site.warm"),
		commands.WithTimeout[WarmSiteCommand](2 * commands.DefaultCommandTimeout),
	}
	if h.observer != nil {
		handlerOpts = append(handlerOpts, commands.WithTelemetry(commands.ObservedTelemetry[WarmSiteCommand](h.observer)))
	}
	h.inner = commands.NewHandler(exec, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[WarmSiteCommand].
func (h *WarmSiteHandler) Execute(ctx context.Context, msg WarmSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand.
func (h *WarmSiteHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), WarmSiteCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *WarmSiteHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the handler to CLI integrations.
func (h *WarmSiteHandler) CLIHandler() any { return h }

// CLIOptions describes the CLI metadata for warm.
func (h *WarmSiteHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"site", "warm"},
		Group:       "site",
		Description: "Load every content resource into the cache",
	}
}

func prefixKey(tokens []string) query.Key {
	key := make(query.Key, 0, len(tokens))
	for i, token := range tokens {
		token = strings.TrimSpace(token)
		if i == 0 {
			if res, ok := site.Lookup(token); ok {
				token = res.Name
			}
			key = append(key, token)
			continue
		}
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			key = append(key, n)
			continue
		}
		key = append(key, token)
	}
	return key
}

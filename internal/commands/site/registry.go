package sitecmd

import (
	"errors"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-sitecontent/internal/commands"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// CommandRegistry records handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes handlers to a dispatcher.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription tears down a dispatcher subscription.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures RegisterSiteCommands.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	WarmCron       string
	// Observer receives every command outcome when set.
	Observer commands.Observer
}

// HandlerSet groups the site handlers and any dispatcher subscriptions.
type HandlerSet struct {
	Refetch       *RefetchResourceHandler
	Invalidate    *InvalidatePrefixHandler
	Warm          *WarmSiteHandler
	Subscriptions []CommandSubscription
}

// Handlers lists the handlers in registration order.
func (s *HandlerSet) Handlers() []any {
	return []any{s.Refetch, s.Invalidate, s.Warm}
}

// Unsubscribe releases every dispatcher subscription.
func (s *HandlerSet) Unsubscribe() {
	for _, sub := range s.Subscriptions {
		sub.Unsubscribe()
	}
	s.Subscriptions = nil
}

// RegisterSiteCommands builds the site handlers and registers them with the
// integrations set on opts. Registration errors are joined; the handler set
// is returned either way.
func RegisterSiteCommands(service SiteService, cache CacheInvalidator, opts RegistrationOptions) (*HandlerSet, error) {
	if service == nil || cache == nil {
		return nil, errors.New("site command registration: service and cache are required")
	}
	logger := commands.CommandLogger(opts.LoggerProvider, "site")

	var (
		refetchOpts    []commands.HandlerOption[RefetchResourceCommand]
		invalidateOpts []commands.HandlerOption[InvalidatePrefixCommand]
		warmOpts       []WarmOption
	)
	if expr := strings.TrimSpace(opts.WarmCron); expr != "" {
		warmOpts = append(warmOpts, WarmWithCronExpression(expr))
	}
	if opts.Observer != nil {
		refetchOpts = append(refetchOpts, commands.WithTelemetry(commands.ObservedTelemetry[RefetchResourceCommand](opts.Observer)))
		invalidateOpts = append(invalidateOpts, commands.WithTelemetry(commands.ObservedTelemetry[InvalidatePrefixCommand](opts.Observer)))
		warmOpts = append(warmOpts, WarmWithObserver(opts.Observer))
	}
	set := &HandlerSet{
		Refetch:    NewRefetchResourceHandler(service, logger, refetchOpts...),
		Invalidate: NewInvalidatePrefixHandler(cache, logger, invalidateOpts...),
		Warm:       NewWarmSiteHandler(service, logger, warmOpts...),
	}

	var errs error
	for _, handler := range set.Handlers() {
		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			sub, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if sub != nil {
				set.Subscriptions = append(set.Subscriptions, sub)
			}
		}
		if opts.CronRegistrar != nil {
			if cron, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cron.CronOptions(), cron.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}
	return set, errs
}

// GlobalDispatcher subscribes site handlers to the go-command dispatcher so
// dispatcher.Dispatch reaches them.
type GlobalDispatcher struct{}

// RegisterCommand satisfies CommandDispatcher.
func (GlobalDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *RefetchResourceHandler:
		return dispatcher.SubscribeCommand[RefetchResourceCommand](h), nil
	case *InvalidatePrefixHandler:
		return dispatcher.SubscribeCommand[InvalidatePrefixCommand](h), nil
	case *WarmSiteHandler:
		return dispatcher.SubscribeCommand[WarmSiteCommand](h), nil
	default:
		return nil, fmt.Errorf("site command registration: unsupported handler %T", handler)
	}
}

// Package sitecontent keeps the content of a Strapi-backed legal site in a
// keyed query cache and serves it as presentation-ready view models.
package sitecontent

import (
	"context"
	"net/http"
	"sync"

	sitecmd "github.com/goliatone/go-sitecontent/internal/commands/site"
	"github.com/goliatone/go-sitecontent/internal/di"
	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/site"
)

// SiteService exports the site content service.
type SiteService = *site.Service

// QueryClient exports the keyed query cache.
type QueryClient = *query.Client

// CommandHandlers exports the registered site command handlers.
type CommandHandlers = *sitecmd.HandlerSet

// ResourceStatus exports the per-resource cache report.
type ResourceStatus = site.ResourceStatus

// Module represents the top level site content runtime facade.
type Module struct {
	container *di.Container

	mu      sync.Mutex
	cancel  context.CancelFunc
	persist <-chan struct{}
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Site returns the site content service.
func (m *Module) Site() SiteService {
	return m.container.SiteService()
}

// Query returns the query cache shared by every resource.
func (m *Module) Query() QueryClient {
	return m.container.QueryClient()
}

// Commands returns the site command handlers.
func (m *Module) Commands() CommandHandlers {
	return m.container.Commands()
}

// Handler returns the view API mounted on a fresh mux.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.Handler()
}

// Start restores snapshots, begins persisting fresh listings and, when
// keep-alive is enabled, subscribes every resource so it never expires.
// Background work stops when ctx ends or Close is called.
func (m *Module) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return site.ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	svc := m.container.SiteService()
	logger := m.container.Logger()

	if m.container.Snapshots() != nil {
		if _, err := svc.Hydrate(ctx); err != nil {
			logger.Warn("site.snapshot.hydrate_failed", "error", err)
		}
		m.persist = svc.Persist(ctx)
	}
	if m.container.Config.Features.KeepAlive {
		if err := svc.Start(ctx); err != nil {
			cancel()
			return err
		}
	}
	m.cancel = cancel
	return nil
}

// Statuses reports the cache state of every resource.
func (m *Module) Statuses() []ResourceStatus {
	return m.container.SiteService().Statuses()
}

// Close stops background work and releases resources.
func (m *Module) Close() error {
	m.mu.Lock()
	cancel, persist := m.cancel, m.persist
	m.cancel, m.persist = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if persist != nil {
		<-persist
	}
	return m.container.Close()
}

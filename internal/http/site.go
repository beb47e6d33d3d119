package http

import (
	"fmt"
	"net/http"
	"strings"

	sitecmd "github.com/goliatone/go-sitecontent/internal/commands/site"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/pagination"
	"github.com/goliatone/go-sitecontent/internal/presenter"
	"github.com/goliatone/go-sitecontent/internal/site"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const (
	// DefaultBasePath is where the site API mounts.
	DefaultBasePath = "/api"
	// DefaultTeamPerSlide is the number of team cards per carousel slide.
	DefaultTeamPerSlide = 3
)

// SiteAPI serves the cached site content as presentation-ready JSON.
type SiteAPI struct {
	basePath     string
	service      *site.Service
	presenter    *presenter.Presenter
	refetch      *sitecmd.RefetchResourceHandler
	warm         *sitecmd.WarmSiteHandler
	metrics      http.Handler
	logger       interfaces.Logger
	pageSize     int
	teamPerSlide int
}

// SiteOption mutates the SiteAPI configuration.
type SiteOption func(*SiteAPI)

// NewSiteAPI constructs a SiteAPI over service.
func NewSiteAPI(service *site.Service, opts ...SiteOption) *SiteAPI {
	api := &SiteAPI{
		basePath:     DefaultBasePath,
		service:      service,
		presenter:    presenter.New(),
		logger:       logging.NoOp(),
		pageSize:     pagination.DefaultPageSize,
		teamPerSlide: DefaultTeamPerSlide,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api").
func WithBasePath(path string) SiteOption {
	return func(api *SiteAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithPresenter replaces the card builder.
func WithPresenter(p *presenter.Presenter) SiteOption {
	return func(api *SiteAPI) {
		if p != nil {
			api.presenter = p
		}
	}
}

// WithCommands routes POST /refetch through the site command handlers.
func WithCommands(set *sitecmd.HandlerSet) SiteOption {
	return func(api *SiteAPI) {
		if set != nil {
			api.refetch = set.Refetch
			api.warm = set.Warm
		}
	}
}

// WithMetricsHandler mounts h under /metrics.
func WithMetricsHandler(h http.Handler) SiteOption {
	return func(api *SiteAPI) {
		api.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) SiteOption {
	return func(api *SiteAPI) {
		api.logger = logging.Or(logger)
	}
}

// WithPageSize sets the number of services per page.
func WithPageSize(n int) SiteOption {
	return func(api *SiteAPI) {
		if n > 0 {
			api.pageSize = n
		}
	}
}

// WithTeamPerSlide sets the number of team cards per slide.
func WithTeamPerSlide(n int) SiteOption {
	return func(api *SiteAPI) {
		if n > 0 {
			api.teamPerSlide = n
		}
	}
}

// Register attaches the site endpoints to the provided mux.
func (api *SiteAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil || api.service == nil {
		return fmt.Errorf("http: site api requires a site service")
	}

	base := joinPath(api.basePath, "")

	mux.HandleFunc("GET "+joinPath(base, "site"), api.handleSite)
	mux.HandleFunc("GET "+joinPath(base, "navigation"), api.handleNavigation)
	mux.HandleFunc("GET "+joinPath(base, "settings"), api.handleSettings)
	mux.HandleFunc("GET "+joinPath(base, "services"), api.handleServices)
	mux.HandleFunc("GET "+joinPath(base, "services")+"/{slug}", api.handleServiceDetail)
	mux.HandleFunc("GET "+joinPath(base, "team"), api.handleTeam)
	mux.HandleFunc("GET "+joinPath(base, "testimonials"), api.handleTestimonials)
	mux.HandleFunc("GET "+joinPath(base, "legal-services"), api.handleLegalServices)
	mux.HandleFunc("POST "+joinPath(base, "refetch"), api.handleRefetch)
	mux.HandleFunc("POST "+joinPath(base, "subscribe"), api.handleSubscribe)
	mux.HandleFunc("GET "+joinPath(base, "healthz"), api.handleHealth)
	if api.metrics != nil {
		mux.Handle("GET "+joinPath(base, "metrics"), api.metrics)
	}
	return nil
}

package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sitecmd "github.com/goliatone/go-sitecontent/internal/commands/site"
	sitehttp "github.com/goliatone/go-sitecontent/internal/http"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/logging/console"
	"github.com/goliatone/go-sitecontent/internal/logging/gologger"
	"github.com/goliatone/go-sitecontent/internal/markdown"
	"github.com/goliatone/go-sitecontent/internal/metrics"
	"github.com/goliatone/go-sitecontent/internal/presenter"
	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/routes"
	"github.com/goliatone/go-sitecontent/internal/runtimeconfig"
	"github.com/goliatone/go-sitecontent/internal/site"
	"github.com/goliatone/go-sitecontent/internal/snapshot"
	"github.com/goliatone/go-sitecontent/internal/strapi"
	"github.com/goliatone/go-sitecontent/internal/transform"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// Container wires the site content module from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	httpClient     *http.Client
	clock          func() time.Time

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	snapshotRepo  snapshot.Repository
	snapshots     *snapshotRepositoryProxy

	recorder    *metrics.Recorder
	renderer    interfaces.MarkdownRenderer
	transport   *strapi.Client
	transformer transform.Transformer
	client      *query.Client
	routes      *routes.Routes
	presenter   *presenter.Presenter

	siteSvc  *site.Service
	commands *sitecmd.HandlerSet
	api      *sitehttp.SiteAPI
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithHTTPClient replaces the client used to reach the CMS.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Container) {
		c.httpClient = hc
	}
}

// WithClock replaces time.Now for the query cache and staleness reports.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.clock = now
	}
}

// WithBunDB stores snapshots in db instead of opening the configured DSN.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the read cache placed in front of the snapshot table.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithSnapshotRepository overrides snapshot storage entirely.
func WithSnapshotRepository(repo snapshot.Repository) Option {
	return func(c *Container) {
		c.snapshotRepo = repo
	}
}

// WithMarkdownRenderer overrides the description renderer.
func WithMarkdownRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cfg.Snapshots.CacheTTL,
		clock:    time.Now,
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = time.Minute
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureSnapshots(); err != nil {
		return nil, err
	}
	if err := c.configureContent(); err != nil {
		c.closeDB()
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureAPI()

	c.logger.Info("site.container.ready",
		"cms", cfg.Content.BaseURL,
		"snapshots", c.snapshots != nil,
		"metrics", c.recorder != nil,
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		logCfg := c.Config.Logging
		switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     logCfg.Level,
				Format:    logCfg.Format,
				AddSource: logCfg.AddSource,
				Focus:     logCfg.Focus,
			})
			if err != nil {
				return fmt.Errorf("site container: logging: %w", err)
			}
			c.loggerProvider = provider
		default:
			level, _ := console.ParseLevel(logCfg.Level)
			c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "site")
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Features.Snapshots {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		cfg.TTL = c.cacheTTL
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("site.container.cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureSnapshots() error {
	repo := c.snapshotRepo
	if repo == nil && c.Config.Features.Snapshots {
		if c.bunDB == nil {
			db, err := snapshot.Open(c.Config.Snapshots.Driver, c.Config.Snapshots.DSN)
			if err != nil {
				return fmt.Errorf("site container: %w", err)
			}
			c.bunDB = db
			c.ownsDB = true
		}
		if err := snapshot.Migrate(context.Background(), c.bunDB); err != nil {
			c.closeDB()
			return fmt.Errorf("site container: %w", err)
		}
		repo = snapshot.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	}
	if repo != nil {
		c.snapshots = newSnapshotRepositoryProxy(repo)
	}
	return nil
}

func (c *Container) configureContent() error {
	cfg := c.Config

	if cfg.Features.Metrics {
		c.recorder = metrics.NewRecorder()
	}
	if c.renderer == nil && cfg.Features.Markdown {
		c.renderer = markdown.NewRenderer(markdown.DefaultOptions())
	}

	transportOpts := []strapi.Option{
		strapi.WithLogger(logging.TransportLogger(c.loggerProvider)),
		strapi.WithRequestIDs(uuid.NewString),
	}
	if c.httpClient != nil {
		transportOpts = append(transportOpts, strapi.WithHTTPClient(c.httpClient))
	}
	c.transport = strapi.NewClient(strapi.Config{
		BaseURL:   cfg.Content.BaseURL,
		APIPrefix: cfg.Content.APIPrefix,
		Token:     cfg.Content.Token,
		Timeout:   cfg.Content.Timeout,
		UserAgent: cfg.Content.UserAgent,
	}, transportOpts...)
	c.transformer = transform.New(c.transport.BaseURL())

	clientOpts := []query.ClientOption{
		query.WithDefaults(query.Options{
			StaleTime:      cfg.Query.StaleTime,
			GCTime:         cfg.Query.GCTime,
			Retry:          cfg.Query.Retry,
			RetryBaseDelay: cfg.Query.RetryBaseDelay,
			RetryMaxDelay:  cfg.Query.RetryMaxDelay,
		}),
		query.WithLogger(logging.QueryLogger(c.loggerProvider)),
		query.WithClock(c.clock),
	}
	if c.recorder != nil {
		clientOpts = append(clientOpts, query.WithRecorder(c.recorder))
	}
	c.client = query.NewClient(clientOpts...)

	siteRoutes, err := routes.New(cfg.Site.PublicBaseURL)
	if err != nil {
		c.client.Close()
		return fmt.Errorf("site container: routes: %w", err)
	}
	c.routes = siteRoutes

	presenterOpts := []presenter.Option{
		presenter.WithDefaultAvatar(cfg.Site.DefaultAvatar),
		presenter.WithServiceLinks(siteRoutes.Service),
	}
	if c.renderer != nil {
		presenterOpts = append(presenterOpts, presenter.WithMarkdown(c.renderer))
	}
	c.presenter = presenter.New(presenterOpts...)

	staleTimes := make(map[string]time.Duration)
	for _, res := range site.Resources() {
		d, ok := cfg.Query.StaleTimes[res.Name]
		if !ok {
			d = cfg.Query.StaleTimeFor(res.Slug())
		}
		staleTimes[res.Name] = d
	}
	siteOpts := []site.Option{
		site.WithLogger(logging.ContentLogger(c.loggerProvider)),
		site.WithStaleTimes(staleTimes),
		site.WithClock(c.clock),
	}
	if c.snapshots != nil {
		siteOpts = append(siteOpts, site.WithSnapshots(c.snapshots))
	}
	c.siteSvc = site.NewService(c.client, c.transport, c.transformer, siteOpts...)
	return nil
}

func (c *Container) configureCommands() error {
	opts := sitecmd.RegistrationOptions{
		LoggerProvider: c.loggerProvider,
		WarmCron:       c.Config.Site.WarmCron,
	}
	if c.recorder != nil {
		opts.Observer = c.recorder
	}
	set, err := sitecmd.RegisterSiteCommands(c.siteSvc, c.client, opts)
	if err != nil {
		return fmt.Errorf("site container: commands: %w", err)
	}
	c.commands = set
	return nil
}

func (c *Container) configureAPI() {
	apiOpts := []sitehttp.SiteOption{
		sitehttp.WithBasePath(c.Config.Server.BasePath),
		sitehttp.WithPresenter(c.presenter),
		sitehttp.WithCommands(c.commands),
		sitehttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		sitehttp.WithPageSize(c.Config.Site.ServicesPerPage),
		sitehttp.WithTeamPerSlide(c.Config.Site.TeamPerSlide),
	}
	if c.recorder != nil {
		apiOpts = append(apiOpts, sitehttp.WithMetricsHandler(c.recorder.Handler()))
	}
	c.api = sitehttp.NewSiteAPI(c.siteSvc, apiOpts...)
}

// SwapSnapshots replaces the snapshot store at runtime. It is a no-op when
// snapshots are disabled.
func (c *Container) SwapSnapshots(repo snapshot.Repository) bool {
	if c.snapshots == nil || repo == nil {
		return false
	}
	c.snapshots.swap(repo)
	c.logger.Info("site.container.snapshots.swapped")
	return true
}

// Handler returns a mux with the site API registered.
func (c *Container) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := c.api.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// Close stops background work and releases owned resources.
func (c *Container) Close() error {
	if c.commands != nil {
		c.commands.Unsubscribe()
	}
	if c.siteSvc != nil {
		c.siteSvc.Stop()
	}
	if c.client != nil {
		c.client.Close()
	}
	return c.closeDB()
}

func (c *Container) closeDB() error {
	if !c.ownsDB || c.bunDB == nil {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	if err != nil {
		return fmt.Errorf("site container: close snapshots: %w", err)
	}
	return nil
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) Logger() interfaces.Logger                 { return c.logger }
func (c *Container) SiteService() *site.Service                { return c.siteSvc }
func (c *Container) QueryClient() *query.Client                { return c.client }
func (c *Container) Transport() *strapi.Client                 { return c.transport }
func (c *Container) Commands() *sitecmd.HandlerSet             { return c.commands }
func (c *Container) API() *sitehttp.SiteAPI                    { return c.api }
func (c *Container) Recorder() *metrics.Recorder               { return c.recorder }
func (c *Container) Routes() *routes.Routes                    { return c.routes }
func (c *Container) Presenter() *presenter.Presenter           { return c.presenter }
func (c *Container) BunDB() *bun.DB                            { return c.bunDB }

// Snapshots returns the snapshot store, or nil when snapshots are disabled.
func (c *Container) Snapshots() snapshot.Repository {
	if c.snapshots == nil {
		return nil
	}
	return c.snapshots
}

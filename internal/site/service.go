package site

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/navigation"
	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/routes"
	"github.com/goliatone/go-sitecontent/internal/snapshot"
	"github.com/goliatone/go-sitecontent/internal/strapi"
	"github.com/goliatone/go-sitecontent/internal/transform"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// Transport fetches decoded envelopes. *strapi.Client satisfies it.
type Transport interface {
	Fetch(ctx context.Context, endpoint string, query url.Values) (*strapi.Envelope, error)
}

// Result pairs a cache snapshot with its typed data. Data is the zero value
// until the first successful fetch.
type Result[T any] struct {
	State query.State
	Data  T
}

// SiteData is every resource of the home page loaded side by side.
type SiteData struct {
	Services        Result[[]transform.Service]
	TeamMembers     Result[[]transform.TeamMember]
	Testimonials    Result[[]transform.Testimonial]
	LegalServices   Result[[]transform.LegalService]
	NavigationLinks Result[[]transform.NavigationLink]
	SiteSettings    Result[*transform.SiteSettings]
	query.Summary
}

// ResourceStatus is a compact view of one listing key.
type ResourceStatus struct {
	Resource      string    `json:"resource"`
	Key           string    `json:"key"`
	Status        string    `json:"status"`
	Fetching      bool      `json:"fetching"`
	Stale         bool      `json:"stale"`
	LastFetchedAt time.Time `json:"lastFetchedAt"`
	Error         string    `json:"error,omitempty"`
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		s.logger = logging.Or(logger)
	}
}

// WithSnapshots enables Hydrate and Persist against repo.
func WithSnapshots(repo snapshot.Repository) Option {
	return func(s *Service) {
		s.snapshots = repo
	}
}

// WithStaleTimes overrides staleness per resource. Keys may be resource
// names or endpoint slugs; unknown keys are ignored.
func WithStaleTimes(overrides map[string]time.Duration) Option {
	return func(s *Service) {
		for name, d := range overrides {
			for i := range s.resources {
				if s.resources[i].Name == name || s.resources[i].Slug() == name {
					s.resources[i].StaleTime = d
				}
			}
		}
	}
}

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service binds the resource catalogue to the query cache.
type Service struct {
	client      *query.Client
	transport   Transport
	transformer transform.Transformer
	resources   []Resource
	snapshots   snapshot.Repository
	logger      interfaces.Logger
	now         func() time.Time

	mu      sync.Mutex
	root    *query.Combined
	stopped chan struct{}
}

// NewService wires client, transport and transformer together.
func NewService(client *query.Client, transport Transport, transformer transform.Transformer, opts ...Option) *Service {
	s := &Service{
		client:      client,
		transport:   transport,
		transformer: transformer,
		resources:   Resources(),
		logger:      logging.NoOp(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client exposes the underlying cache.
func (s *Service) Client() *query.Client { return s.client }

// Resources returns the catalogue with any stale overrides applied.
func (s *Service) Resources() []Resource {
	return append([]Resource(nil), s.resources...)
}

// Resource looks up name among the configured resources.
func (s *Service) Resource(name string) (Resource, error) {
	res, ok := lookupIn(s.resources, name)
	if !ok {
		return Resource{}, unknownResource(name)
	}
	return res, nil
}

// Query returns the listing query of res.
func (s *Service) Query(res Resource) query.Query {
	return query.Query{
		Key:     res.Key(),
		Fetch:   s.fetcher(res, res.Endpoint, strapi.Populate(res.Populate)),
		Options: s.options(res),
	}
}

// Load returns the listing state of name. Cached data is returned at once
// and revalidated in the background when stale; otherwise Load waits for
// the fetch. The error is the fetch error, also recorded on the state.
func (s *Service) Load(ctx context.Context, name string) (query.State, error) {
	res, err := s.Resource(name)
	if err != nil {
		return query.State{}, err
	}
	return s.load(ctx, s.Query(res))
}

// State returns the cached listing state of name without fetching.
func (s *Service) State(name string) (query.State, bool) {
	res, ok := lookupIn(s.resources, name)
	if !ok {
		return query.State{}, false
	}
	return s.client.State(res.Key())
}

func (s *Service) Services(ctx context.Context) (Result[[]transform.Service], error) {
	return loadAs[[]transform.Service](ctx, s, ResourceServices)
}

func (s *Service) TeamMembers(ctx context.Context) (Result[[]transform.TeamMember], error) {
	return loadAs[[]transform.TeamMember](ctx, s, ResourceTeamMembers)
}

func (s *Service) Testimonials(ctx context.Context) (Result[[]transform.Testimonial], error) {
	return loadAs[[]transform.Testimonial](ctx, s, ResourceTestimonials)
}

func (s *Service) LegalServices(ctx context.Context) (Result[[]transform.LegalService], error) {
	return loadAs[[]transform.LegalService](ctx, s, ResourceLegalServices)
}

func (s *Service) NavigationLinks(ctx context.Context) (Result[[]transform.NavigationLink], error) {
	return loadAs[[]transform.NavigationLink](ctx, s, ResourceNavigationLinks)
}

// SiteSettings returns the settings single type. Data stays nil while the
// record is unpublished.
func (s *Service) SiteSettings(ctx context.Context) (Result[*transform.SiteSettings], error) {
	return loadAs[*transform.SiteSettings](ctx, s, ResourceSiteSettings)
}

// Navigation resolves the navbar, falling back to the built-in menu.
func (s *Service) Navigation(ctx context.Context) navigation.Menu {
	state, _ := s.Load(ctx, ResourceNavigationLinks)
	return navigation.Resolve(state)
}

// ServiceByID fetches /services/{id} under its own detail key.
func (s *Service) ServiceByID(ctx context.Context, id int64) (Result[transform.Service], error) {
	return detailAs[transform.Service](ctx, s, ResourceServices, id)
}

// TeamMemberByID fetches /team-members/{id} under its own detail key.
func (s *Service) TeamMemberByID(ctx context.Context, id int64) (Result[transform.TeamMember], error) {
	return detailAs[transform.TeamMember](ctx, s, ResourceTeamMembers, id)
}

// ServiceBySlug resolves a services page segment against the cached listing.
// A loaded listing without a match yields a *NotFoundError.
func (s *Service) ServiceBySlug(ctx context.Context, slug string) (Result[transform.Service], error) {
	list, err := s.Services(ctx)
	out := Result[transform.Service]{State: list.State}
	if err != nil && !list.State.HasData() {
		return out, err
	}
	svc, ok := routes.MatchService(list.Data, slug)
	if !ok {
		return out, &NotFoundError{Resource: ResourceServices, Ref: slug}
	}
	out.Data = svc
	return out, nil
}

// Filter loads a listing narrowed by equality filters on record fields.
func (s *Service) Filter(ctx context.Context, name string, filters map[string]string) (query.State, error) {
	res, err := s.Resource(name)
	if err != nil {
		return query.State{}, err
	}
	if res.Single {
		return query.State{}, unknownResource(name)
	}
	values := strapi.Populate(res.Populate)
	if values == nil {
		values = url.Values{}
	}
	for field, value := range filters {
		values.Set("filters["+field+"][$eq]", value)
	}
	return s.load(ctx, query.Query{
		Key:     FilteredKey(res.Name, filters),
		Fetch:   s.fetcher(res, res.Endpoint, values),
		Options: s.options(res),
	})
}

// SiteData loads every resource concurrently. Failures stay on the
// individual results; the error is only set when ctx ends first.
func (s *Service) SiteData(ctx context.Context) (SiteData, error) {
	var out SiteData
	var group errgroup.Group
	group.Go(func() error { out.Services, _ = s.Services(ctx); return nil })
	group.Go(func() error { out.TeamMembers, _ = s.TeamMembers(ctx); return nil })
	group.Go(func() error { out.Testimonials, _ = s.Testimonials(ctx); return nil })
	group.Go(func() error { out.LegalServices, _ = s.LegalServices(ctx); return nil })
	group.Go(func() error { out.NavigationLinks, _ = s.NavigationLinks(ctx); return nil })
	group.Go(func() error { out.SiteSettings, _ = s.SiteSettings(ctx); return nil })
	_ = group.Wait()

	out.Summary = query.Summarize(
		out.Services.State,
		out.TeamMembers.State,
		out.Testimonials.State,
		out.LegalServices.State,
		out.NavigationLinks.State,
		out.SiteSettings.State,
	)
	return out, ctx.Err()
}

// Warm fetches every stale or empty listing and waits for all of them. One
// failing resource does not cancel the others.
func (s *Service) Warm(ctx context.Context) error {
	errs := make([]error, len(s.resources))
	var group errgroup.Group
	for i, res := range s.resources {
		group.Go(func() error {
			errs[i] = s.client.Prefetch(ctx, s.Query(res))
			return nil
		})
	}
	_ = group.Wait()
	err := errors.Join(errs...)
	if err != nil {
		s.logger.Warn("site.warm.failed", "error", err)
	} else {
		s.logger.Info("site.warm.completed", "resources", len(s.resources))
	}
	return err
}

// Refetch invalidates everything under name and waits for a fresh listing.
func (s *Service) Refetch(ctx context.Context, name string) (query.State, error) {
	res, err := s.Resource(name)
	if err != nil {
		return query.State{}, err
	}
	s.client.Invalidate(Prefix(res.Name))
	q := s.Query(res)
	data, err := s.client.Fetch(ctx, q)
	return s.settled(q.Key, data, err), err
}

// RefetchAll refreshes every listing and waits for the results.
func (s *Service) RefetchAll(ctx context.Context) error {
	if root := s.Root(); root != nil {
		root.RefetchAll()
		if err := root.Wait(ctx); err != nil {
			return err
		}
		return errors.Join(root.Errors()...)
	}
	for _, res := range s.resources {
		s.client.Invalidate(Prefix(res.Name))
	}
	return s.Warm(ctx)
}

// Invalidate marks every key under name stale and reports how many matched.
func (s *Service) Invalidate(name string) (int, error) {
	res, err := s.Resource(name)
	if err != nil {
		return 0, err
	}
	return s.client.Invalidate(Prefix(res.Name)), nil
}

// Start subscribes to every listing and keeps them observed until ctx ends
// or Stop is called. Observed keys are refetched on invalidation.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.root != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	subs := make([]*query.Subscription, 0, len(s.resources))
	for _, res := range s.resources {
		subs = append(subs, s.client.Subscribe(s.Query(res), nil))
	}
	s.root = query.Combine(subs...)
	stopped := make(chan struct{})
	s.stopped = stopped
	s.mu.Unlock()

	s.logger.Info("site.keepalive.started", "resources", len(subs))
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopped:
		}
	}()
	return nil
}

// Stop releases the subscriptions taken by Start.
func (s *Service) Stop() {
	s.mu.Lock()
	root := s.root
	s.root = nil
	if s.stopped != nil {
		close(s.stopped)
		s.stopped = nil
	}
	s.mu.Unlock()

	if root != nil {
		root.Unsubscribe()
		s.logger.Info("site.keepalive.stopped")
	}
}

// Root returns the combined subscriptions of Start, or nil.
func (s *Service) Root() *query.Combined {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Statuses reports every listing key in catalogue order.
func (s *Service) Statuses() []ResourceStatus {
	now := s.now()
	out := make([]ResourceStatus, 0, len(s.resources))
	for _, res := range s.resources {
		st, _ := s.client.State(res.Key())
		status := ResourceStatus{
			Resource:      res.Name,
			Key:           res.Key().String(),
			Status:        st.Status.String(),
			Fetching:      st.IsFetching,
			Stale:         st.IsStale(now, res.StaleTime),
			LastFetchedAt: st.LastFetchedAt,
		}
		if st.Error != nil {
			status.Error = st.Error.Error()
		}
		out = append(out, status)
	}
	return out
}

func (s *Service) options(res Resource) *query.Options {
	opts := s.client.Defaults()
	opts.StaleTime = res.StaleTime
	return &opts
}

func (s *Service) fetcher(res Resource, endpoint string, values url.Values) query.Fetcher {
	return func(ctx context.Context) (any, error) {
		logger := logging.WithResource(s.logger, res.Name, "", endpoint)
		env, err := s.transport.Fetch(ctx, endpoint, values)
		if err != nil {
			return nil, err
		}
		data, errs := res.decode(s.transformer, env)
		for _, err := range errs {
			logger.Warn("site.record.skipped", "error", err)
		}
		if res.Single && len(errs) > 0 {
			return nil, errs[0]
		}
		logger.Debug("site.resource.fetched", "records", len(env.Data), "skipped", len(errs))
		return data, nil
	}
}

func (s *Service) load(ctx context.Context, q query.Query) (query.State, error) {
	if state, ok := s.client.State(q.Key); ok && state.HasData() {
		if !state.IsFetching && state.IsStale(s.now(), q.Options.StaleTime) {
			s.revalidate(q)
		}
		return state, nil
	}
	data, err := s.client.Fetch(ctx, q)
	return s.settled(q.Key, data, err), err
}

// revalidate refreshes q in the background. The temporary subscription
// keeps the fetch alive after the caller has gone.
func (s *Service) revalidate(q query.Query) {
	sub := s.client.Subscribe(q, nil)
	done := sub.Done()
	go func() {
		<-done
		sub.Unsubscribe()
	}()
}

// settled reads the state a Fetch left behind, rebuilding it when the key
// was already collected.
func (s *Service) settled(key query.Key, data any, err error) query.State {
	if state, ok := s.client.State(key); ok {
		return state
	}
	state := query.State{Key: key, Data: data, Status: query.StatusSuccess, LastFetchedAt: s.now()}
	if err != nil {
		state = query.State{Key: key, Status: query.StatusError, Error: err, ErrorAt: s.now()}
	}
	return state
}

func loadAs[T any](ctx context.Context, s *Service, name string) (Result[T], error) {
	state, err := s.Load(ctx, name)
	data, _ := query.Data[T](state)
	return Result[T]{State: state, Data: data}, err
}

func detailAs[T any](ctx context.Context, s *Service, name string, id int64) (Result[T], error) {
	res, err := s.Resource(name)
	if err != nil {
		return Result[T]{}, err
	}
	ref := strconv.FormatInt(id, 10)
	list := s.fetcher(res, res.Endpoint+"/"+ref, strapi.Populate(res.Populate))
	fetch := func(ctx context.Context) (any, error) {
		data, err := list(ctx)
		if err != nil {
			return nil, err
		}
		items, _ := data.([]T)
		if len(items) == 0 {
			return nil, &NotFoundError{Resource: res.Name, Ref: ref}
		}
		return items[0], nil
	}
	state, err := s.load(ctx, query.Query{Key: DetailKey(res.Name, id), Fetch: fetch, Options: s.options(res)})
	data, _ := query.Data[T](state)
	return Result[T]{State: state, Data: data}, err
}

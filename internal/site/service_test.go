package site_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/h2non/gock"

	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/site"
	"github.com/goliatone/go-sitecontent/internal/snapshot"
	"github.com/goliatone/go-sitecontent/internal/strapi"
	"github.com/goliatone/go-sitecontent/internal/transform"
)

const cmsBase = "http://cms.test"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	service *site.Service
	client  *query.Client
	clock   *clock
}

func newHarness(t *testing.T, opts ...site.Option) *harness {
	t.Helper()
	hc := &http.Client{}
	gock.InterceptClient(hc)

	clk := &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	defaults := query.DefaultOptions()
	defaults.Retry = 0
	client := query.NewClient(query.WithDefaults(defaults), query.WithClock(clk.Now))
	transport := strapi.NewClient(strapi.Config{BaseURL: cmsBase}, strapi.WithHTTPClient(hc))

	t.Cleanup(func() {
		client.Close()
		gock.RestoreClient(hc)
		gock.Off()
	})

	opts = append([]site.Option{site.WithClock(clk.Now)}, opts...)
	return &harness{
		service: site.NewService(client, transport, transform.New(cmsBase), opts...),
		client:  client,
		clock:   clk,
	}
}

func mockServices(times int) {
	gock.New(cmsBase).
		Get("/api/services").
		MatchParam("populate", `^\*$`).
		Times(times).
		Reply(200).
		JSON(map[string]any{"data": []any{
			map[string]any{"id": 1, "title": "Family Law", "slug": "family-law"},
			map[string]any{"id": 2, "attributes": map[string]any{"title": "Tax Law"}},
			map[string]any{"id": 3, "attributes": map[string]any{"description": "no title"}},
		}})
}

func mockAll() {
	mockServices(1)
	gock.New(cmsBase).Get("/api/team-members").Reply(200).
		JSON(map[string]any{"data": []any{map[string]any{"id": 1, "name": "Jane Roe"}}})
	gock.New(cmsBase).Get("/api/testimonials").Reply(200).
		JSON(map[string]any{"data": []any{map[string]any{"id": 1, "name": "Ann", "testimonial": "Great"}}})
	gock.New(cmsBase).Get("/api/legal-services").MatchParam("populate", "^deep$").Reply(200).
		JSON(map[string]any{"data": []any{map[string]any{"id": 1, "title": "Contracts"}}})
	gock.New(cmsBase).Get("/api/navigation-links").Reply(200).
		JSON(map[string]any{"data": []any{
			map[string]any{"id": 2, "label": "About", "href": "/about", "order": 2},
			map[string]any{"id": 1, "label": "Home", "href": "/", "order": 1},
		}})
	gock.New(cmsBase).Get("/api/site-setting").MatchParam("populate", "^deep$").Reply(200).
		JSON(map[string]any{"data": map[string]any{"id": 1, "siteName": "Roe & Partners"}})
}

func TestServicesSkipsMalformedRecordsAndCaches(t *testing.T) {
	h := newHarness(t)
	mockServices(1)

	result, err := h.service.Services(context.Background())
	if err != nil {
		t.Fatalf("Services: %v", err)
	}
	if !result.State.IsSuccess() || len(result.Data) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Data[1].Title != "Tax Law" {
		t.Fatalf("expected attributes record mapped, got %+v", result.Data[1])
	}

	again, err := h.service.Services(context.Background())
	if err != nil || len(again.Data) != 2 {
		t.Fatalf("expected cached data, got %+v %v", again, err)
	}
	if again.State.LastFetchedAt != result.State.LastFetchedAt {
		t.Fatalf("expected no refetch while fresh")
	}
	if !gock.IsDone() {
		t.Fatalf("expected the services mock to be consumed")
	}
}

func TestStaleDataIsServedWhileRevalidating(t *testing.T) {
	h := newHarness(t)
	mockServices(2)

	first, err := h.service.Services(context.Background())
	if err != nil {
		t.Fatalf("Services: %v", err)
	}
	h.clock.Advance(6 * time.Minute)

	stale, err := h.service.Services(context.Background())
	if err != nil {
		t.Fatalf("Services: %v", err)
	}
	if stale.State.LastFetchedAt != first.State.LastFetchedAt || len(stale.Data) != 2 {
		t.Fatalf("expected cached data to be returned immediately, got %+v", stale.State)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		st, _ := h.service.State(site.ResourceServices)
		if st.LastFetchedAt.After(first.State.LastFetchedAt) && !st.IsFetching {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("background revalidation did not complete: %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSiteSettingsNullYieldsNilData(t *testing.T) {
	h := newHarness(t)
	gock.New(cmsBase).Get("/api/site-setting").Reply(200).JSON(map[string]any{"data": nil})

	result, err := h.service.SiteSettings(context.Background())
	if err != nil {
		t.Fatalf("SiteSettings: %v", err)
	}
	if !result.State.IsSuccess() || result.Data != nil {
		t.Fatalf("expected success with nil settings, got %+v", result)
	}
}

func TestServiceBySlug(t *testing.T) {
	h := newHarness(t)
	mockServices(1)

	found, err := h.service.ServiceBySlug(context.Background(), "Tax-Law")
	if err != nil {
		t.Fatalf("ServiceBySlug: %v", err)
	}
	if found.Data.ID != 2 {
		t.Fatalf("expected service 2, got %+v", found.Data)
	}

	_, err = h.service.ServiceBySlug(context.Background(), "criminal-law")
	if !errors.Is(err, site.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if query.Retryable(err) {
		t.Fatalf("not found must not be retryable")
	}
}

func TestServiceByIDUsesDetailKey(t *testing.T) {
	h := newHarness(t)
	gock.New(cmsBase).Get("/api/services/7").Reply(200).
		JSON(map[string]any{"data": map[string]any{"id": 7, "title": "Immigration"}})

	result, err := h.service.ServiceByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("ServiceByID: %v", err)
	}
	if result.Data.Title != "Immigration" {
		t.Fatalf("unexpected service %+v", result.Data)
	}
	if _, ok := h.client.State(site.ServiceByID(7)); !ok {
		t.Fatalf("expected detail key to be cached")
	}
	if n, _ := h.service.Invalidate(site.ResourceServices); n != 1 {
		t.Fatalf("expected the detail key under the services prefix, matched %d", n)
	}
}

func TestFilterSendsEqualityFilters(t *testing.T) {
	h := newHarness(t)
	gock.New(cmsBase).Get("/api/services").
		MatchParam("filters[slug][$eq]", "^tax-law$").
		Reply(200).
		JSON(map[string]any{"data": []any{map[string]any{"id": 2, "title": "Tax Law", "slug": "tax-law"}}})

	state, err := h.service.Filter(context.Background(), "services", map[string]string{"slug": "tax-law"})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	services, _ := query.Data[[]transform.Service](state)
	if len(services) != 1 || !state.Key.Equal(site.ServicesFiltered(map[string]string{"slug": "tax-law"})) {
		t.Fatalf("unexpected filtered state %+v", state)
	}
	if _, err := h.service.Filter(context.Background(), "site-setting", nil); !errors.Is(err, site.ErrUnknownResource) {
		t.Fatalf("expected single types to reject filters, got %v", err)
	}
}

func TestSiteDataAggregatesIndependentResults(t *testing.T) {
	h := newHarness(t)
	mockServices(1)
	gock.New(cmsBase).Get("/api/team-members").Reply(404)
	gock.New(cmsBase).Get("/api/testimonials").Reply(200).JSON(map[string]any{"data": []any{}})
	gock.New(cmsBase).Get("/api/legal-services").Reply(200).JSON(map[string]any{"data": []any{}})
	gock.New(cmsBase).Get("/api/navigation-links").Reply(200).JSON(map[string]any{"data": []any{}})
	gock.New(cmsBase).Get("/api/site-setting").Reply(200).JSON(map[string]any{"data": nil})

	data, err := h.service.SiteData(context.Background())
	if err != nil {
		t.Fatalf("SiteData: %v", err)
	}
	if len(data.Services.Data) != 2 {
		t.Fatalf("expected services despite team failure, got %+v", data.Services)
	}
	if !data.TeamMembers.State.IsError() {
		t.Fatalf("expected team members error, got %+v", data.TeamMembers.State)
	}
	if data.IsSuccess || data.IsLoading || !data.HasErrors() || len(data.Errors) != 1 {
		t.Fatalf("unexpected summary %+v", data.Summary)
	}
	if strapi.StatusCode(data.Errors[0]) != 404 {
		t.Fatalf("expected 404 error, got %v", data.Errors[0])
	}
}

func TestStartKeepsListingsObserved(t *testing.T) {
	h := newHarness(t)
	mockAll()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.service.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := h.service.Start(ctx); !errors.Is(err, site.ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	root := h.service.Root()
	if err := root.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !root.IsSuccess() {
		t.Fatalf("expected every listing loaded, errors %v", root.Errors())
	}

	links, _ := h.service.NavigationLinks(ctx)
	if len(links.Data) != 2 || links.Data[0].Label != "Home" {
		t.Fatalf("expected ordered navigation, got %+v", links.Data)
	}
	menu := h.service.Navigation(ctx)
	if menu.Fallback || len(menu.Links) != 2 {
		t.Fatalf("unexpected menu %+v", menu)
	}

	// Observed keys survive Remove.
	if h.client.Remove(site.ServicesAll()) {
		t.Fatalf("expected observed key to be kept")
	}
	h.service.Stop()
	if !h.client.Remove(site.ServicesAll()) {
		t.Fatalf("expected key to be removable after Stop")
	}
}

func TestWarmJoinsFailures(t *testing.T) {
	h := newHarness(t)
	mockServices(1)
	gock.New(cmsBase).Get("/api/team-members").Reply(500)
	gock.New(cmsBase).Get("/api/testimonials").Reply(200).JSON(map[string]any{"data": []any{}})
	gock.New(cmsBase).Get("/api/legal-services").Reply(200).JSON(map[string]any{"data": []any{}})
	gock.New(cmsBase).Get("/api/navigation-links").Reply(200).JSON(map[string]any{"data": []any{}})
	gock.New(cmsBase).Get("/api/site-setting").Reply(200).JSON(map[string]any{"data": nil})

	err := h.service.Warm(context.Background())
	if strapi.StatusCode(err) != 500 {
		t.Fatalf("expected joined 500 error, got %v", err)
	}
	statuses := h.service.Statuses()
	if len(statuses) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(statuses))
	}
	if statuses[0].Status != "success" || statuses[1].Status != "error" || statuses[1].Error == "" {
		t.Fatalf("unexpected statuses %+v", statuses[:2])
	}
}

func TestRefetchIgnoresFreshness(t *testing.T) {
	h := newHarness(t)
	mockServices(2)

	first, err := h.service.Services(context.Background())
	if err != nil {
		t.Fatalf("Services: %v", err)
	}
	state, err := h.service.Refetch(context.Background(), "services")
	if err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	if !state.LastFetchedAt.After(first.State.LastFetchedAt) || state.Invalidated {
		t.Fatalf("expected a fresh fetch, got %+v", state)
	}
	if _, err := h.service.Refetch(context.Background(), "blog"); !errors.Is(err, site.ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
}

func TestPersistAndHydrateSnapshots(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	h := newHarness(t, site.WithSnapshots(repo))
	mockServices(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := h.service.Persist(ctx)
	if _, err := h.service.Services(ctx); err != nil {
		t.Fatalf("Services: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := repo.Get(ctx, site.ServicesAll().String()); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot was not written")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	restarted := newHarness(t, site.WithSnapshots(repo))
	seeded, err := restarted.service.Hydrate(context.Background())
	if err != nil || seeded != 1 {
		t.Fatalf("Hydrate: seeded %d err %v", seeded, err)
	}
	result, err := restarted.service.Services(context.Background())
	if err != nil {
		t.Fatalf("Services after hydrate: %v", err)
	}
	if len(result.Data) != 2 || result.Data[0].Slug != "family-law" {
		t.Fatalf("unexpected hydrated data %+v", result.Data)
	}
}

func TestSaveSnapshotsWritesCachedListings(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	h := newHarness(t, site.WithSnapshots(repo))
	mockServices(1)

	if saved, err := h.service.SaveSnapshots(context.Background()); err != nil || saved != 0 {
		t.Fatalf("expected nothing to save on an empty cache, got %d %v", saved, err)
	}
	if _, err := h.service.Services(context.Background()); err != nil {
		t.Fatalf("Services: %v", err)
	}
	saved, err := h.service.SaveSnapshots(context.Background())
	if err != nil || saved != 1 {
		t.Fatalf("SaveSnapshots: saved %d err %v", saved, err)
	}
	snap, err := repo.Get(context.Background(), site.ServicesAll().String())
	if err != nil {
		t.Fatalf("Get snapshot: %v", err)
	}
	if snap.Resource != site.ResourceServices || !snap.FetchedAt.Equal(h.clock.Now()) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/h2non/gock"

	"github.com/goliatone/go-sitecontent/cmd/sitecontent/internal/bootstrap"
	"github.com/goliatone/go-sitecontent/internal/di"
	"github.com/goliatone/go-sitecontent/internal/navigation"
	"github.com/goliatone/go-sitecontent/internal/site"
	"github.com/goliatone/go-sitecontent/internal/snapshot"
	"github.com/goliatone/go-sitecontent/pkg/testsupport"
)

const cmsBase = "http://cms.test"

// useFakeCMS routes every module built by the commands through gock and
// returns the options the last build received.
func useFakeCMS(t *testing.T, extra ...di.Option) *bootstrap.Options {
	t.Helper()
	t.Setenv("SITECONTENT_QUERY_RETRY", "0")

	hc := &http.Client{}
	gock.InterceptClient(hc)

	seen := &bootstrap.Options{}
	previous := moduleBuilder
	moduleBuilder = func(opts bootstrap.Options) (*bootstrap.Module, error) {
		*seen = opts
		opts.DIOptions = append(opts.DIOptions, di.WithHTTPClient(hc))
		opts.DIOptions = append(opts.DIOptions, extra...)
		return bootstrap.BuildModule(opts)
	}
	t.Cleanup(func() {
		moduleBuilder = previous
		gock.RestoreClient(hc)
		gock.Off()
	})
	return seen
}

func mockList(endpoint string, records ...map[string]any) {
	gock.New(cmsBase).Get("/api/" + endpoint).Reply(200).JSON(testsupport.Envelope(records...))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--cms-url", cmsBase))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchPrintsTransformedListing(t *testing.T) {
	seen := useFakeCMS(t)
	mockList("services",
		map[string]any{"id": 1, "title": "Family Law", "slug": "family-law"},
		map[string]any{"id": 2, "title": "Tax Law", "slug": "tax-law"},
	)

	out, err := runCommand(t, "fetch", "services", "--log-level", "error")
	if err != nil {
		t.Fatalf("fetch returned error: %v\n%s", err, out)
	}
	if seen.CMSURL != cmsBase || seen.LogLevel != "error" {
		t.Fatalf("flags not forwarded to the builder: %+v", seen)
	}

	var payload struct {
		Resource string           `json:"resource"`
		Status   string           `json:"status"`
		Data     []map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if payload.Resource != "services" || payload.Status != "success" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(payload.Data) != 2 || payload.Data[0]["slug"] != "family-law" {
		t.Fatalf("unexpected data %+v", payload.Data)
	}
	if !gock.IsDone() {
		t.Fatalf("expected the services endpoint to be called")
	}
}

func TestFetchRejectsUnknownResource(t *testing.T) {
	useFakeCMS(t)

	_, err := runCommand(t, "fetch", "blog")
	if !errors.Is(err, site.ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
	if _, err := runCommand(t, "fetch"); err == nil {
		t.Fatalf("expected an argument error without a resource")
	}
}

func TestFetchReportsUpstreamFailure(t *testing.T) {
	useFakeCMS(t)
	gock.New(cmsBase).Get("/api/testimonials").Reply(500).JSON(map[string]any{"error": "boom"})

	out, err := runCommand(t, "fetch", "testimonials")
	if err == nil {
		t.Fatalf("expected the fetch error to be returned")
	}
	var payload struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if decodeErr := json.Unmarshal([]byte(out), &payload); decodeErr != nil {
		t.Fatalf("decode output: %v\n%s", decodeErr, out)
	}
	if payload.Status != "error" || payload.Error == "" {
		t.Fatalf("expected an error state, got %+v", payload)
	}
}

func TestNavFallsBackWithoutLinks(t *testing.T) {
	useFakeCMS(t)
	mockList("navigation-links")

	out, err := runCommand(t, "nav")
	if err != nil {
		t.Fatalf("nav returned error: %v\n%s", err, out)
	}
	var menu navigation.Menu
	if err := json.Unmarshal([]byte(out), &menu); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !menu.Fallback || len(menu.Links) != len(navigation.DefaultLinks()) {
		t.Fatalf("expected the built-in menu, got %+v", menu)
	}
}

func TestWarmPersistsSnapshots(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	useFakeCMS(t, di.WithSnapshotRepository(repo))
	mockList("services", map[string]any{"id": 1, "title": "Family Law", "slug": "family-law"})
	mockList("team-members", map[string]any{"id": 1, "name": "Jane Roe"})
	mockList("testimonials", map[string]any{"id": 1, "name": "Bob", "testimonial": "Great"})
	mockList("legal-services", map[string]any{"id": 1, "title": "Wills"})
	mockList("navigation-links", map[string]any{"id": 1, "label": "Home", "href": "/"})
	gock.New(cmsBase).Get("/api/site-setting").Reply(200).JSON(map[string]any{
		"data": map[string]any{"id": 1, "siteName": "Roe & Partners"},
	})

	out, err := runCommand(t, "warm")
	if err != nil {
		t.Fatalf("warm returned error: %v\n%s", err, out)
	}
	var payload struct {
		Saved    int                   `json:"saved"`
		Statuses []site.ResourceStatus `json:"statuses"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(payload.Statuses) != len(site.Resources()) {
		t.Fatalf("expected a status per resource, got %+v", payload.Statuses)
	}
	for _, status := range payload.Statuses {
		if status.Status != "success" {
			t.Fatalf("expected %s to succeed, got %+v", status.Resource, status)
		}
	}
	if payload.Saved == 0 {
		t.Fatalf("expected snapshots to be saved")
	}
	if _, err := repo.Get(context.Background(), site.ServicesAll().String()); err != nil {
		t.Fatalf("expected a services snapshot: %v", err)
	}
}

func TestStatusReportsHydratedSnapshots(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	useFakeCMS(t, di.WithSnapshotRepository(repo))
	mockList("services", map[string]any{"id": 1, "title": "Family Law", "slug": "family-law"})
	mockList("team-members")
	mockList("testimonials")
	mockList("legal-services")
	mockList("navigation-links")
	gock.New(cmsBase).Get("/api/site-setting").Reply(200).JSON(map[string]any{"data": map[string]any{"id": 1, "siteName": "Roe"}})

	if out, err := runCommand(t, "warm"); err != nil {
		t.Fatalf("warm returned error: %v\n%s", err, out)
	}

	out, err := runCommand(t, "status")
	if err != nil {
		t.Fatalf("status returned error: %v\n%s", err, out)
	}
	var statuses []site.ResourceStatus
	if err := json.Unmarshal([]byte(out), &statuses); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	for _, status := range statuses {
		if status.Resource == site.ResourceServices && status.Status != "success" {
			t.Fatalf("expected services restored from the snapshot, got %+v", status)
		}
	}
}

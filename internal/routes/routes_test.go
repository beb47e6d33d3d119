package routes_test

import (
	"strings"
	"testing"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-sitecontent/internal/routes"
	"github.com/goliatone/go-sitecontent/internal/transform"
)

func TestRoutesBuildSiteURLs(t *testing.T) {
	r, err := routes.New("https://firm.example/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := r.About(); got != "https://firm.example/about" {
		t.Fatalf("unexpected about url %q", got)
	}
	if got := r.ServicesPage(1); got != "https://firm.example/services" {
		t.Fatalf("unexpected first page url %q", got)
	}
	if got := r.ServicesPage(3); !strings.HasSuffix(got, "/services?page=3") {
		t.Fatalf("unexpected page url %q", got)
	}
	if got := r.Service(transform.Service{ID: 4, Slug: "corporate-law"}); got != "https://firm.example/services/corporate-law" {
		t.Fatalf("unexpected service url %q", got)
	}
}

func TestServiceSlugFallsBackToTitleThenID(t *testing.T) {
	if got := routes.ServiceSlug(transform.Service{ID: 9, Title: "Family Law"}); got != "family-law" {
		t.Fatalf("expected slug from title, got %q", got)
	}
	if got := routes.ServiceSlug(transform.Service{ID: 9}); got != "9" {
		t.Fatalf("expected id fallback, got %q", got)
	}
}

func TestMatchService(t *testing.T) {
	services := []transform.Service{
		{ID: 1, Title: "Tax Planning"},
		{ID: 2, Title: "Real Estate", Slug: "property"},
	}
	if svc, ok := routes.MatchService(services, "Tax-Planning"); !ok || svc.ID != 1 {
		t.Fatalf("expected tax planning, got %+v %v", svc, ok)
	}
	if svc, ok := routes.MatchService(services, "property"); !ok || svc.ID != 2 {
		t.Fatalf("expected explicit slug match, got %+v %v", svc, ok)
	}
	if _, ok := routes.MatchService(services, "real-estate"); ok {
		t.Fatalf("expected explicit slug to win over title")
	}
}

func TestUnknownRoutesAndGroupsFail(t *testing.T) {
	r, err := routes.New("https://firm.example")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Build("careers", nil, nil); err == nil {
		t.Fatalf("expected unknown route error")
	}
	if _, err := routes.NewWithConfig(&urlkit.Config{}); err == nil {
		t.Fatalf("expected missing group error")
	}
}

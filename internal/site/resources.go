package site

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/strapi"
	"github.com/goliatone/go-sitecontent/internal/transform"
)

// Resource names double as query key roots.
const (
	ResourceServices        = "services"
	ResourceTeamMembers     = "teamMembers"
	ResourceTestimonials    = "testimonials"
	ResourceLegalServices   = "legalServices"
	ResourceNavigationLinks = "navigationLinks"
	ResourceSiteSettings    = "siteSettings"
)

// Resource describes one content type served by the CMS.
type Resource struct {
	Name      string
	Endpoint  string
	Populate  string
	Single    bool
	StaleTime time.Duration

	decode  func(transform.Transformer, *strapi.Envelope) (any, []error)
	restore func([]byte) (any, error)
}

// Key is the cache key of the full listing.
func (r Resource) Key() query.Key {
	return query.NewKey(r.Name, scopeAll)
}

// Slug is the endpoint without its leading slash, e.g. "navigation-links".
func (r Resource) Slug() string {
	return strings.TrimPrefix(r.Endpoint, "/")
}

// Resources returns the catalogue in display order.
func Resources() []Resource {
	return []Resource{
		{
			Name: ResourceServices, Endpoint: "/services", Populate: "*",
			StaleTime: query.DefaultStaleTime,
			decode:    list(transform.Transformer.Services),
			restore:   restore[[]transform.Service],
		},
		{
			Name: ResourceTeamMembers, Endpoint: "/team-members", Populate: "*",
			StaleTime: query.DefaultStaleTime,
			decode:    list(transform.Transformer.TeamMembers),
			restore:   restore[[]transform.TeamMember],
		},
		{
			Name: ResourceTestimonials, Endpoint: "/testimonials", Populate: "*",
			StaleTime: query.DefaultStaleTime,
			decode:    list(transform.Transformer.Testimonials),
			restore:   restore[[]transform.Testimonial],
		},
		{
			Name: ResourceLegalServices, Endpoint: "/legal-services", Populate: "deep",
			StaleTime: query.DefaultStaleTime,
			decode:    list(transform.Transformer.LegalServices),
			restore:   restore[[]transform.LegalService],
		},
		{
			Name: ResourceNavigationLinks, Endpoint: "/navigation-links", Populate: "*",
			StaleTime: 10 * time.Minute,
			decode:    list(transform.Transformer.NavigationLinks),
			restore:   restore[[]transform.NavigationLink],
		},
		{
			Name: ResourceSiteSettings, Endpoint: "/site-setting", Populate: "deep",
			Single:    true,
			StaleTime: 15 * time.Minute,
			decode:    settings,
			restore:   restore[*transform.SiteSettings],
		},
	}
}

// Lookup finds a resource by name or endpoint slug, ignoring case.
func Lookup(name string) (Resource, bool) {
	return lookupIn(Resources(), name)
}

func lookupIn(resources []Resource, name string) (Resource, bool) {
	needle := strings.ToLower(strings.Trim(strings.TrimSpace(name), "/"))
	if needle == "" {
		return Resource{}, false
	}
	for _, res := range resources {
		if strings.ToLower(res.Name) == needle || res.Slug() == needle {
			return res, true
		}
	}
	return Resource{}, false
}

// Names lists the resource names.
func Names() []string {
	resources := Resources()
	out := make([]string, len(resources))
	for i, res := range resources {
		out[i] = res.Name
	}
	return out
}

func list[T any](fn func(transform.Transformer, []strapi.Record) ([]T, []error)) func(transform.Transformer, *strapi.Envelope) (any, []error) {
	return func(t transform.Transformer, env *strapi.Envelope) (any, []error) {
		return fn(t, env.Data)
	}
}

// settings yields a nil *SiteSettings when the single type is unpublished.
func settings(t transform.Transformer, env *strapi.Envelope) (any, []error) {
	rec, ok := env.First()
	if !ok {
		return (*transform.SiteSettings)(nil), nil
	}
	out, err := t.SiteSettings(rec)
	if err != nil {
		return nil, []error{err}
	}
	return &out, nil
}

func restore[T any](payload []byte) (any, error) {
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return out, nil
}

// Package routes builds public site URLs with go-urlkit.
package routes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-sitecontent/internal/transform"
)

// Route names registered in the site group.
const (
	GroupSite     = "site"
	RouteHome     = "home"
	RouteAbout    = "about"
	RouteServices = "services"
	RouteService  = "service"
	RouteBlog     = "blog"
)

// DefaultConfig describes the public site pages under baseURL.
func DefaultConfig(baseURL string) *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    GroupSite,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Paths: map[string]string{
					RouteHome:     "/",
					RouteAbout:    "/about",
					RouteServices: "/services",
					RouteService:  "/services/:slug",
					RouteBlog:     "/blog",
				},
			},
		},
	}
}

// Routes resolves named site routes.
type Routes struct {
	manager *urlkit.RouteManager
	group   *urlkit.Group
}

// New builds routes for the site hosted at baseURL.
func New(baseURL string) (*Routes, error) {
	return NewWithConfig(DefaultConfig(baseURL))
}

// NewWithConfig builds routes from an explicit urlkit config. The config must
// declare the site group.
func NewWithConfig(cfg *urlkit.Config) (*Routes, error) {
	if cfg == nil {
		return nil, fmt.Errorf("routes: config is nil")
	}
	manager := urlkit.NewRouteManager(cfg)
	group, err := lookupGroup(manager, GroupSite)
	if err != nil {
		return nil, err
	}
	return &Routes{manager: manager, group: group}, nil
}

// Build resolves route with path params and query values.
func (r *Routes) Build(route string, params map[string]any, query map[string]string) (string, error) {
	builder, err := safeBuilder(r.group, route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	for key, val := range query {
		builder.WithQuery(key, val)
	}
	return builder.Build()
}

// Home is the landing page URL.
func (r *Routes) Home() string { return r.must(RouteHome, nil, nil) }

// About is the about page URL.
func (r *Routes) About() string { return r.must(RouteAbout, nil, nil) }

// ServicesPage is the services listing URL; page 1 carries no query.
func (r *Routes) ServicesPage(page int) string {
	if page <= 1 {
		return r.must(RouteServices, nil, nil)
	}
	return r.must(RouteServices, nil, map[string]string{"page": strconv.Itoa(page)})
}

// Service is the detail URL of svc.
func (r *Routes) Service(svc transform.Service) string {
	return r.must(RouteService, map[string]any{"slug": ServiceSlug(svc)}, nil)
}

func (r *Routes) must(route string, params map[string]any, query map[string]string) string {
	url, err := r.Build(route, params, query)
	if err != nil {
		return ""
	}
	return url
}

// ServiceSlug is the CMS slug when present, otherwise one derived from the
// title, otherwise the record id.
func ServiceSlug(svc transform.Service) string {
	for _, candidate := range []string{svc.Slug, svc.Title} {
		if normalized := Normalize(candidate); normalized != "" {
			return normalized
		}
	}
	return strconv.FormatInt(svc.ID, 10)
}

// Normalize lower-cases and hyphenates value for use as a path segment.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	normalized, err := slug.Normalize(value)
	if err != nil {
		return ""
	}
	return normalized
}

// MatchService finds the service addressed by a slug segment.
func MatchService(services []transform.Service, segment string) (transform.Service, bool) {
	want := Normalize(segment)
	if want == "" {
		return transform.Service{}, false
	}
	for _, svc := range services {
		if ServiceSlug(svc) == want {
			return svc, true
		}
	}
	return transform.Service{}, false
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("routes: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("routes: route %q not found", route)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("routes: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("routes: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("routes: route group %q not found", name)
	}
	return group, nil
}

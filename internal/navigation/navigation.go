// Package navigation resolves the navbar from the cached navigation links,
// substituting a built-in menu whenever the content service has nothing to
// offer.
package navigation

import (
	"strings"

	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/transform"
)

const fallbackSuffix = " - Using fallback navigation"

// Menu is the resolved navbar. Links are page routes; ScrollLinks jump to
// anchors on the current page.
type Menu struct {
	Links       []transform.NavigationLink `json:"links"`
	ScrollLinks []transform.NavigationLink `json:"scrollLinks"`
	Fallback    bool                       `json:"fallback"`
	Notice      string                     `json:"notice,omitempty"`
}

// DefaultLinks returns a fresh copy of the built-in menu.
func DefaultLinks() []transform.NavigationLink {
	return []transform.NavigationLink{
		{ID: 1, Label: "Home", Href: "/", Order: 1},
		{ID: 2, Label: "About", Href: "/about", Order: 2},
		{ID: 3, Label: "Services", Href: "/services", Order: 3},
		{ID: 4, Label: "Blog", Href: "#", Order: 4},
		{ID: 5, Label: "Contact Us", Href: "#", Order: 5},
		{ID: 6, Label: "Our Team", Href: "#", IsScroll: true, ScrollTarget: "team-section", Order: 6},
	}
}

// Resolve builds the menu for a navigation links state. The built-in menu is
// used while nothing has been fetched, after a failure with nothing cached,
// and when the service returns no links. Cached links survive a failed
// background refresh.
func Resolve(state query.State) Menu {
	links, _ := query.Data[[]transform.NavigationLink](state)

	switch {
	case !state.HasData() && state.Error != nil:
		return fallback("Navigation error: " + state.Error.Error() + fallbackSuffix)
	case !state.HasData():
		return fallback("Loading navigation..." + fallbackSuffix)
	case len(links) == 0:
		return fallback("")
	}
	return Split(links)
}

// Split partitions links into route and scroll links, keeping order.
func Split(links []transform.NavigationLink) Menu {
	menu := Menu{
		Links:       []transform.NavigationLink{},
		ScrollLinks: []transform.NavigationLink{},
	}
	for _, link := range links {
		if link.IsScroll {
			menu.ScrollLinks = append(menu.ScrollLinks, link)
			continue
		}
		menu.Links = append(menu.Links, link)
	}
	return menu
}

// ScrollTarget is the anchor a scroll link jumps to, defaulting to its href
// without the leading '#'.
func ScrollTarget(link transform.NavigationLink) string {
	if target := strings.TrimSpace(link.ScrollTarget); target != "" {
		return target
	}
	return strings.TrimPrefix(strings.TrimSpace(link.Href), "#")
}

func fallback(notice string) Menu {
	menu := Split(DefaultLinks())
	menu.Fallback = true
	menu.Notice = notice
	return menu
}

package site

import "github.com/goliatone/go-sitecontent/internal/query"

const (
	scopeAll      = "all"
	scopeFiltered = "filtered"
)

// Keys are hierarchical: [resource], [resource, "all"], [resource, id] and
// [resource, "filtered", filters]. Invalidating [resource] reaches them all.

// Prefix is the root key of resource.
func Prefix(resource string) query.Key { return query.NewKey(resource) }

// AllKey is the listing key of resource.
func AllKey(resource string) query.Key { return query.NewKey(resource, scopeAll) }

// DetailKey addresses one record of resource.
func DetailKey(resource string, id int64) query.Key { return query.NewKey(resource, id) }

// FilteredKey addresses a filtered listing. Filter maps hash independent of
// key order.
func FilteredKey(resource string, filters map[string]string) query.Key {
	tokens := make(map[string]any, len(filters))
	for k, v := range filters {
		tokens[k] = v
	}
	return query.NewKey(resource, scopeFiltered, tokens)
}

func ServicesAll() query.Key { return AllKey(ResourceServices) }
func ServiceByID(id int64) query.Key { return DetailKey(ResourceServices, id) }
func TeamMembersAll() query.Key { return AllKey(ResourceTeamMembers) }
func TeamMemberByID(id int64) query.Key { return DetailKey(ResourceTeamMembers, id) }
func TestimonialsAll() query.Key { return AllKey(ResourceTestimonials) }
func TestimonialByID(id int64) query.Key { return DetailKey(ResourceTestimonials, id) }
func LegalServicesAll() query.Key { return AllKey(ResourceLegalServices) }
func LegalServiceByID(id int64) query.Key { return DetailKey(ResourceLegalServices, id) }
func NavigationLinksAll() query.Key { return AllKey(ResourceNavigationLinks) }
func NavigationLinkByID(id int64) query.Key { return DetailKey(ResourceNavigationLinks, id) }
func SiteSettingsAll() query.Key { return AllKey(ResourceSiteSettings) }
func ServicesFiltered(f map[string]string) query.Key { return FilteredKey(ResourceServices, f) }

package transform

import (
	"cmp"
	"slices"
	"strings"

	"github.com/goliatone/go-sitecontent/internal/strapi"
)

const defaultRating = 5

// Transformer turns normalised Strapi records into view models. BaseURL is
// the content service origin used to absolutise media paths.
type Transformer struct {
	BaseURL string
}

// New returns a Transformer resolving media against baseURL.
func New(baseURL string) Transformer {
	return Transformer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Service maps a services record.
func (t Transformer) Service(rec strapi.Record) (Service, error) {
	if err := check(ResourceService, rec); err != nil {
		return Service{}, err
	}
	out := Service{
		ID:          rec.ID,
		DocumentID:  rec.DocumentID,
		Title:       rec.StringOr("title", ""),
		Description: RichText(rec.Fields["description"]),
		Slug:        rec.StringOr("slug", ""),
	}
	out.CreatedAt, _ = rec.Time("createdAt")
	out.UpdatedAt, _ = rec.Time("updatedAt")
	return out, nil
}

// TeamMember maps a team-members record. Contact fields default to empty
// so callers can test presence with a plain comparison.
func (t Transformer) TeamMember(rec strapi.Record) (TeamMember, error) {
	if err := check(ResourceTeamMember, rec); err != nil {
		return TeamMember{}, err
	}
	out := TeamMember{
		ID:          rec.ID,
		DocumentID:  rec.DocumentID,
		Name:        rec.StringOr("name", ""),
		Position:    rec.StringOr("position", ""),
		Description: RichText(rec.Fields["description"]),
		Image:       strapi.MediaURL(t.BaseURL, rec.Fields["image"]),
		Phone:       strings.TrimSpace(rec.StringOr("phone", "")),
		WhatsApp:    strings.TrimSpace(rec.StringOr("whatsapp", "")),
		Email:       strings.TrimSpace(rec.StringOr("email", "")),
		Experience:  rec.StringOr("experience", ""),
	}
	out.CreatedAt, _ = rec.Time("createdAt")
	out.UpdatedAt, _ = rec.Time("updatedAt")
	return out, nil
}

// Testimonial maps a testimonials record. A missing or zero rating becomes 5.
func (t Transformer) Testimonial(rec strapi.Record) (Testimonial, error) {
	if err := check(ResourceTestimonial, rec); err != nil {
		return Testimonial{}, err
	}
	rating := defaultRating
	if n, ok := rec.Int("rating"); ok && n > 0 {
		rating = int(min(n, 5))
	}
	out := Testimonial{
		ID:          rec.ID,
		DocumentID:  rec.DocumentID,
		Name:        rec.StringOr("name", ""),
		Company:     rec.StringOr("company", ""),
		Position:    rec.StringOr("position", ""),
		Image:       strapi.MediaURL(t.BaseURL, rec.Fields["image"]),
		Testimonial: RichText(rec.Fields["testimonial"]),
		Rating:      rating,
	}
	out.CreatedAt, _ = rec.Time("createdAt")
	out.UpdatedAt, _ = rec.Time("updatedAt")
	return out, nil
}

// LegalService maps a legal-services record including its subtitle groups.
func (t Transformer) LegalService(rec strapi.Record) (LegalService, error) {
	if err := check(ResourceLegalService, rec); err != nil {
		return LegalService{}, err
	}
	out := LegalService{
		ID:          rec.ID,
		DocumentID:  rec.DocumentID,
		Title:       rec.StringOr("title", ""),
		Description: RichText(rec.Fields["description"]),
		Subtitles:   subtitles(rec),
	}
	out.CreatedAt, _ = rec.Time("createdAt")
	out.UpdatedAt, _ = rec.Time("updatedAt")
	return out, nil
}

// NavigationLink maps a navigation-links record.
func (t Transformer) NavigationLink(rec strapi.Record) (NavigationLink, error) {
	if err := check(ResourceNavigationLink, rec); err != nil {
		return NavigationLink{}, err
	}
	out := NavigationLink{
		ID:           rec.ID,
		DocumentID:   rec.DocumentID,
		Label:        rec.StringOr("label", ""),
		Href:         rec.StringOr("href", ""),
		ScrollTarget: rec.StringOr("scrollTarget", ""),
	}
	out.IsScroll, _ = rec.Bool("isScroll")
	if n, ok := rec.Int("order"); ok {
		out.Order = int(n)
	}
	out.CreatedAt, _ = rec.Time("createdAt")
	out.UpdatedAt, _ = rec.Time("updatedAt")
	return out, nil
}

var settingsKeys = []string{
	"siteName", "tagline", "description", "contactEmail", "contactPhone",
	"address", "logo", "createdAt", "updatedAt", "publishedAt", "locale",
}

// SiteSettings maps the site-setting single type.
func (t Transformer) SiteSettings(rec strapi.Record) (SiteSettings, error) {
	if err := validateFields(ResourceSiteSettings, rec.ID, rec.Fields); err != nil {
		return SiteSettings{}, err
	}
	out := SiteSettings{
		ID:           rec.ID,
		SiteName:     rec.StringOr("siteName", ""),
		Tagline:      rec.StringOr("tagline", ""),
		Description:  RichText(rec.Fields["description"]),
		ContactEmail: rec.StringOr("contactEmail", ""),
		ContactPhone: rec.StringOr("contactPhone", ""),
		Address:      rec.StringOr("address", ""),
		Logo:         strapi.MediaURL(t.BaseURL, rec.Fields["logo"]),
	}
	out.UpdatedAt, _ = rec.Time("updatedAt")
	for key, value := range rec.Fields {
		if slices.Contains(settingsKeys, key) {
			continue
		}
		if out.Extra == nil {
			out.Extra = map[string]any{}
		}
		out.Extra[key] = value
	}
	return out, nil
}

// Services maps every record, skipping malformed ones.
func (t Transformer) Services(records []strapi.Record) ([]Service, []error) {
	return Collect(records, t.Service)
}

// TeamMembers maps every record, skipping malformed ones.
func (t Transformer) TeamMembers(records []strapi.Record) ([]TeamMember, []error) {
	return Collect(records, t.TeamMember)
}

// Testimonials maps every record, skipping malformed ones.
func (t Transformer) Testimonials(records []strapi.Record) ([]Testimonial, []error) {
	return Collect(records, t.Testimonial)
}

// LegalServices maps every record, skipping malformed ones.
func (t Transformer) LegalServices(records []strapi.Record) ([]LegalService, []error) {
	return Collect(records, t.LegalService)
}

// NavigationLinks maps every record and orders the result by Order. Ties
// keep response order.
func (t Transformer) NavigationLinks(records []strapi.Record) ([]NavigationLink, []error) {
	links, errs := Collect(records, t.NavigationLink)
	SortLinks(links)
	return links, errs
}

// SortLinks orders links by Order, stable for equal values.
func SortLinks(links []NavigationLink) {
	slices.SortStableFunc(links, func(a, b NavigationLink) int {
		return cmp.Compare(a.Order, b.Order)
	})
}

// Collect applies fn to each record. Failures are returned alongside the
// successfully mapped items; the result is never nil.
func Collect[T any](records []strapi.Record, fn func(strapi.Record) (T, error)) ([]T, []error) {
	out := make([]T, 0, len(records))
	var errs []error
	for _, rec := range records {
		item, err := fn(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, item)
	}
	return out, errs
}

func check(resource string, rec strapi.Record) error {
	if !rec.HasID() {
		return &TransformError{Resource: resource, Reason: "record has no id"}
	}
	return validateFields(resource, rec.ID, rec.Fields)
}

func subtitles(rec strapi.Record) []Subtitle {
	raw, _ := rec.List("subtitles")
	out := make([]Subtitle, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry := strapi.NewRecord(obj)
		out = append(out, Subtitle{
			Title:  entry.StringOr("title", ""),
			Points: points(entry.Fields["points"]),
		})
	}
	return out
}

// points accepts a JSON array of strings or a newline separated string.
func points(value any) []string {
	out := []string{}
	switch v := strapi.Unwrap(value).(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// Package presenter turns cached view models into the cards and section
// envelopes the site renders.
package presenter

import (
	"html"
	"strings"

	"github.com/goliatone/go-sitecontent/internal/transform"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const (
	// DefaultAvatar stands in for missing profile photos.
	DefaultAvatar = "/avatar.png"
	// DefaultExcerptLength bounds service card excerpts.
	DefaultExcerptLength = 150

	consultationSubject = "Legal Consultation Inquiry"
)

// ServiceLinker resolves the public URL of a service detail page.
type ServiceLinker func(transform.Service) string

// Option customises a Presenter.
type Option func(*Presenter)

// WithDefaultAvatar replaces the placeholder image.
func WithDefaultAvatar(path string) Option {
	return func(p *Presenter) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			p.avatar = trimmed
		}
	}
}

// WithMarkdown renders long descriptions to HTML.
func WithMarkdown(renderer interfaces.MarkdownRenderer) Option {
	return func(p *Presenter) {
		p.markdown = renderer
	}
}

// WithServiceLinks sets how service cards link to their detail page.
func WithServiceLinks(linker ServiceLinker) Option {
	return func(p *Presenter) {
		p.links = linker
	}
}

// WithExcerptLength bounds service excerpts.
func WithExcerptLength(n int) Option {
	return func(p *Presenter) {
		if n > 0 {
			p.excerpt = n
		}
	}
}

// Presenter builds cards. The zero value is not usable; call New.
type Presenter struct {
	avatar   string
	markdown interfaces.MarkdownRenderer
	links    ServiceLinker
	excerpt  int
}

// New builds a Presenter.
func New(opts ...Option) *Presenter {
	p := &Presenter{
		avatar:  DefaultAvatar,
		excerpt: DefaultExcerptLength,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Contact is one contact action on a team card.
type Contact struct {
	Kind  string `json:"kind"`
	Href  string `json:"href"`
	Label string `json:"label"`
	Title string `json:"title"`
}

// TeamCard is a team carousel card.
type TeamCard struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Position   string    `json:"position"`
	Image      string    `json:"image"`
	Initials   string    `json:"initials"`
	Experience string    `json:"experience,omitempty"`
	Contacts   []Contact `json:"contacts"`
}

// TeamCard builds the card for member. Contact actions appear only for the
// channels the member has.
func (p *Presenter) TeamCard(member transform.TeamMember) TeamCard {
	card := TeamCard{
		ID:       member.ID,
		Name:     member.Name,
		Position: member.Position,
		Image:    p.image(member.Image),
		Initials: Initials(member.Name),
		Contacts: []Contact{},
	}
	if member.Experience != "" {
		card.Experience = FormatExperience(member.Experience)
	}
	if member.Phone != "" {
		formatted := FormatPhoneNumber(member.Phone)
		card.Contacts = append(card.Contacts, Contact{
			Kind:  "phone",
			Href:  "tel:" + member.Phone,
			Label: "Call " + member.Name + " at " + formatted,
			Title: "Call: " + formatted,
		})
	}
	if member.WhatsApp != "" {
		card.Contacts = append(card.Contacts, Contact{
			Kind:  "whatsapp",
			Href:  WhatsAppURL(member.WhatsApp, "Hello "+member.Name+", I would like to schedule a consultation regarding legal services."),
			Label: "WhatsApp " + member.Name,
			Title: "WhatsApp for consultation",
		})
	}
	if member.Email != "" {
		body := "Dear " + member.Name + ",\n\nI am interested in scheduling a consultation regarding legal services. Please let me know your availability.\n\nThank you."
		card.Contacts = append(card.Contacts, Contact{
			Kind:  "email",
			Href:  MailtoURL(member.Email, consultationSubject, body),
			Label: "Email " + member.Name,
			Title: "Email: " + member.Email,
		})
	}
	return card
}

// TeamCards maps members in order.
func (p *Presenter) TeamCards(members []transform.TeamMember) []TeamCard {
	out := make([]TeamCard, len(members))
	for i, member := range members {
		out[i] = p.TeamCard(member)
	}
	return out
}

// TestimonialCard is one slide of the testimonial carousel.
type TestimonialCard struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Company  string `json:"company"`
	Position string `json:"position"`
	Image    string `json:"image"`
	Initials string `json:"initials"`
	Quote    string `json:"quote"`
	Rating   int    `json:"rating"`
}

// TestimonialCard builds the card for t.
func (p *Presenter) TestimonialCard(t transform.Testimonial) TestimonialCard {
	return TestimonialCard{
		ID:       t.ID,
		Name:     t.Name,
		Company:  t.Company,
		Position: t.Position,
		Image:    p.image(t.Image),
		Initials: Initials(t.Name),
		Quote:    t.Testimonial,
		Rating:   t.Rating,
	}
}

// ServiceCard is a tile on the services page.
type ServiceCard struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Href            string `json:"href,omitempty"`
	Excerpt         string `json:"excerpt"`
	DescriptionHTML string `json:"descriptionHtml"`
}

// ServiceCard builds the tile for svc.
func (p *Presenter) ServiceCard(svc transform.Service) ServiceCard {
	card := ServiceCard{
		ID:              svc.ID,
		Title:           svc.Title,
		Slug:            svc.Slug,
		Excerpt:         Truncate(svc.Description, p.excerpt),
		DescriptionHTML: p.render(svc.Description),
	}
	if p.links != nil {
		card.Href = p.links(svc)
	}
	return card
}

// ServiceCards maps services in order.
func (p *Presenter) ServiceCards(services []transform.Service) []ServiceCard {
	out := make([]ServiceCard, len(services))
	for i, svc := range services {
		out[i] = p.ServiceCard(svc)
	}
	return out
}

// LegalServiceCard is a long-form block on the about page.
type LegalServiceCard struct {
	ID              int64                `json:"id"`
	Title           string               `json:"title"`
	DescriptionHTML string               `json:"descriptionHtml"`
	Subtitles       []transform.Subtitle `json:"subtitles"`
}

// LegalServiceCard builds the block for svc.
func (p *Presenter) LegalServiceCard(svc transform.LegalService) LegalServiceCard {
	subtitles := svc.Subtitles
	if subtitles == nil {
		subtitles = []transform.Subtitle{}
	}
	return LegalServiceCard{
		ID:              svc.ID,
		Title:           svc.Title,
		DescriptionHTML: p.render(svc.Description),
		Subtitles:       subtitles,
	}
}

func (p *Presenter) image(src string) string {
	if strings.TrimSpace(src) == "" {
		return p.avatar
	}
	return src
}

func (p *Presenter) render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if p.markdown != nil {
		if out, err := p.markdown.Render([]byte(text)); err == nil {
			return string(out)
		}
	}
	return "<p>" + html.EscapeString(text) + "</p>"
}

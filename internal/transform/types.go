package transform

import "time"

// Service is a practice area shown on the services page.
type Service struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"documentId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamMember is a lawyer profile in the team carousel.
type TeamMember struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"documentId,omitempty"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Phone       string    `json:"phone"`
	WhatsApp    string    `json:"whatsapp"`
	Email       string    `json:"email"`
	Experience  string    `json:"experience"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Testimonial is a client quote.
type Testimonial struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"documentId,omitempty"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Image       string    `json:"image"`
	Testimonial string    `json:"testimonial"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Subtitle is one titled bullet group of a legal service.
type Subtitle struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// LegalService is a long-form description on the about page.
type LegalService struct {
	ID          int64      `json:"id"`
	DocumentID  string     `json:"documentId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Subtitles   []Subtitle `json:"subtitles"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NavigationLink is one navbar entry. Scroll links target an in-page anchor.
type NavigationLink struct {
	ID           int64     `json:"id"`
	DocumentID   string    `json:"documentId,omitempty"`
	Label        string    `json:"label"`
	Href         string    `json:"href"`
	IsScroll     bool      `json:"isScroll"`
	ScrollTarget string    `json:"scrollTarget"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SiteSettings is the single-type record of general site copy. Fields not
// mapped onto a named attribute are kept in Extra.
type SiteSettings struct {
	ID           int64          `json:"id"`
	SiteName     string         `json:"siteName"`
	Tagline      string         `json:"tagline"`
	Description  string         `json:"description"`
	ContactEmail string         `json:"contactEmail"`
	ContactPhone string         `json:"contactPhone"`
	Address      string         `json:"address"`
	Logo         string         `json:"logo"`
	Extra        map[string]any `json:"extra,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

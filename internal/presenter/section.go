package presenter

import (
	"time"

	"github.com/goliatone/go-sitecontent/internal/query"
)

// SectionState is what a section shows.
type SectionState string

const (
	SectionLoading SectionState = "loading"
	SectionError   SectionState = "error"
	SectionEmpty   SectionState = "empty"
	SectionReady   SectionState = "ready"
)

// Copy is the static text of a section. Noun is used in status messages.
type Copy struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Noun        string `json:"-"`
}

var (
	TeamCopy = Copy{
		Title:       "Our Team",
		Description: "Meet our dedicated team of legal professionals who bring years of experience and expertise to every case. Our diverse team is committed to providing exceptional legal services and achieving the best outcomes for our clients.",
		Noun:        "team members",
	}
	TestimonialsCopy = Copy{
		Title:       "What Our Clients Are Saying",
		Description: "Don't just take our word for it. Here's what our satisfied clients have to say about our legal services and the exceptional results we've achieved together.",
		Noun:        "testimonials",
	}
	ServicesCopy      = Copy{Title: "Our Services", Noun: "services"}
	LegalServicesCopy = Copy{Title: "Legal Services", Noun: "legal services"}
)

// Section wraps one independently loaded block of the page.
type Section struct {
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	State         SectionState `json:"state"`
	Message       string       `json:"message,omitempty"`
	Error         string       `json:"error,omitempty"`
	Notice        string       `json:"notice,omitempty"`
	Fetching      bool         `json:"fetching"`
	Retry         bool         `json:"retry"`
	LastFetchedAt *time.Time   `json:"lastFetchedAt,omitempty"`
	Data          any          `json:"data"`
}

// NewSection classifies state for display. A section loads until its first
// data arrives, errors only when nothing is cached, and reports a failed
// background refresh as a notice over the cached data.
func NewSection(copy Copy, state query.State, count int, data any) Section {
	section := Section{
		Title:       copy.Title,
		Description: copy.Description,
		Fetching:    state.IsFetching,
		Data:        data,
	}
	if state.HasData() {
		at := state.LastFetchedAt
		section.LastFetchedAt = &at
	}

	switch {
	case !state.HasData() && state.Error != nil:
		section.State = SectionError
		section.Error = state.Error.Error()
		section.Message = "Error loading " + copy.Noun + ": " + section.Error
		section.Retry = true
	case !state.HasData():
		section.State = SectionLoading
		section.Message = "Loading " + copy.Noun + "..."
	case count == 0:
		section.State = SectionEmpty
		section.Message = "No " + copy.Noun + " available at the moment."
	default:
		section.State = SectionReady
	}
	if notice := state.Notice(); notice != nil && state.HasData() {
		section.Notice = notice.Error()
	}
	return section
}

package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-sitecontent/internal/carousel"
	sitecmd "github.com/goliatone/go-sitecontent/internal/commands/site"
	"github.com/goliatone/go-sitecontent/internal/navigation"
	"github.com/goliatone/go-sitecontent/internal/pagination"
	"github.com/goliatone/go-sitecontent/internal/presenter"
	"github.com/goliatone/go-sitecontent/internal/site"
	"github.com/goliatone/go-sitecontent/internal/transform"
)

const subscribedMessage = "Thank you for subscribing!"

type sitePayload struct {
	Navigation    navigation.Menu         `json:"navigation"`
	Settings      *transform.SiteSettings `json:"settings"`
	Services      presenter.Section       `json:"services"`
	Team          presenter.Section       `json:"team"`
	Testimonials  presenter.Section       `json:"testimonials"`
	LegalServices presenter.Section       `json:"legalServices"`
	Loading       bool                    `json:"loading"`
	Errors        []string                `json:"errors,omitempty"`
}

type servicesPage struct {
	Items []presenter.ServiceCard `json:"items"`
	Page  pagination.Page         `json:"page"`
}

type slide[T any] struct {
	Items  []T `json:"items"`
	Index  int `json:"index"`
	Slides int `json:"slides"`
	Prev   int `json:"prev"`
	Next   int `json:"next"`
}

type settingsPayload struct {
	Settings *transform.SiteSettings `json:"settings"`
	Notice   string                  `json:"notice,omitempty"`
}

type refetchPayload struct {
	Resource string `json:"resource,omitempty"`
	Force    bool   `json:"force,omitempty"`
}

type refetchResponse struct {
	Statuses []site.ResourceStatus `json:"statuses"`
}

type subscribePayload struct {
	Email string `json:"email"`
}

type healthResponse struct {
	Status    string                `json:"status"`
	Resources []site.ResourceStatus `json:"resources"`
}

func (api *SiteAPI) handleSite(w http.ResponseWriter, r *http.Request) {
	data, err := api.service.SiteData(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	payload := sitePayload{
		Navigation:    navigation.Resolve(data.NavigationLinks.State),
		Settings:      data.SiteSettings.Data,
		Services:      api.servicesSection(data.Services, 1),
		Team:          api.teamSection(data.TeamMembers, 0),
		Testimonials:  api.testimonialsSection(data.Testimonials, 0),
		LegalServices: api.legalServicesSection(data.LegalServices),
		Loading:       data.IsLoading,
	}
	for _, err := range data.Errors {
		payload.Errors = append(payload.Errors, err.Error())
	}
	writeJSON(w, http.StatusOK, payload)
}

func (api *SiteAPI) handleNavigation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.service.Navigation(r.Context()))
}

func (api *SiteAPI) handleSettings(w http.ResponseWriter, r *http.Request) {
	res, err := api.service.SiteSettings(r.Context())
	if err != nil && !res.State.HasData() {
		writeError(w, err)
		return
	}
	payload := settingsPayload{Settings: res.Data}
	if notice := res.State.Notice(); notice != nil {
		payload.Notice = notice.Error()
	}
	writeJSON(w, http.StatusOK, payload)
}

// Sections always answer 200: a failed first load is reported on the
// section so the page can render its retry state.
func (api *SiteAPI) handleServices(w http.ResponseWriter, r *http.Request) {
	res, _ := api.service.Services(r.Context())
	writeJSON(w, http.StatusOK, api.servicesSection(res, parseIntQuery(r, "page", 1)))
}

func (api *SiteAPI) handleServiceDetail(w http.ResponseWriter, r *http.Request) {
	res, err := api.service.ServiceBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.presenter.ServiceCard(res.Data))
}

func (api *SiteAPI) handleTeam(w http.ResponseWriter, r *http.Request) {
	res, _ := api.service.TeamMembers(r.Context())
	writeJSON(w, http.StatusOK, api.teamSection(res, parseIntQuery(r, "slide", 0)))
}

func (api *SiteAPI) handleTestimonials(w http.ResponseWriter, r *http.Request) {
	res, _ := api.service.Testimonials(r.Context())
	writeJSON(w, http.StatusOK, api.testimonialsSection(res, parseIntQuery(r, "index", 0)))
}

func (api *SiteAPI) handleLegalServices(w http.ResponseWriter, r *http.Request) {
	res, _ := api.service.LegalServices(r.Context())
	writeJSON(w, http.StatusOK, api.legalServicesSection(res))
}

func (api *SiteAPI) handleRefetch(w http.ResponseWriter, r *http.Request) {
	var payload refetchPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON payload"})
		return
	}

	var err error
	switch resource := strings.TrimSpace(payload.Resource); {
	case resource != "":
		if api.refetch == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		err = api.refetch.Execute(r.Context(), sitecmd.RefetchResourceCommand{Resource: resource})
	default:
		if api.warm == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		err = api.warm.Execute(r.Context(), sitecmd.WarmSiteCommand{Force: payload.Force})
	}
	if err != nil {
		api.logger.Warn("site.http.refetch.failed", "resource", payload.Resource, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refetchResponse{Statuses: api.service.Statuses()})
}

func (api *SiteAPI) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var payload subscribePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON payload"})
		return
	}
	if err := presenter.ValidateSubscription(payload.Email); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation_failed", Message: err.Error()})
		return
	}
	api.logger.Info("site.http.subscribed", "email_domain", emailDomain(payload.Email))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "subscribed", "message": subscribedMessage})
}

// emailDomain keeps the part after @ so subscriber addresses stay out of logs.
func emailDomain(email string) string {
	_, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok {
		return ""
	}
	return strings.ToLower(domain)
}

// handleHealth reports unavailable while any resource has failed with
// nothing cached.
func (api *SiteAPI) handleHealth(w http.ResponseWriter, _ *http.Request) {
	statuses := api.service.Statuses()
	resp := healthResponse{Status: "ok", Resources: statuses}
	code := http.StatusOK
	for _, status := range statuses {
		if status.Error != "" && status.LastFetchedAt.IsZero() {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, resp)
}

func (api *SiteAPI) servicesSection(res site.Result[[]transform.Service], number int) presenter.Section {
	page := pagination.New(len(res.Data), api.pageSize, number)
	data := servicesPage{
		Items: api.presenter.ServiceCards(pagination.Slice(res.Data, page)),
		Page:  page,
	}
	return presenter.NewSection(presenter.ServicesCopy, res.State, len(res.Data), data)
}

func (api *SiteAPI) teamSection(res site.Result[[]transform.TeamMember], index int) presenter.Section {
	view := window(res.Data, index, api.teamPerSlide)
	data := slide[presenter.TeamCard]{
		Items:  api.presenter.TeamCards(view.Items),
		Index:  view.Index,
		Slides: view.Slides,
		Prev:   view.Prev,
		Next:   view.Next,
	}
	return presenter.NewSection(presenter.TeamCopy, res.State, len(res.Data), data)
}

func (api *SiteAPI) testimonialsSection(res site.Result[[]transform.Testimonial], index int) presenter.Section {
	view := window(res.Data, index, 1)
	cards := make([]presenter.TestimonialCard, len(view.Items))
	for i, item := range view.Items {
		cards[i] = api.presenter.TestimonialCard(item)
	}
	data := slide[presenter.TestimonialCard]{
		Items:  cards,
		Index:  view.Index,
		Slides: view.Slides,
		Prev:   view.Prev,
		Next:   view.Next,
	}
	return presenter.NewSection(presenter.TestimonialsCopy, res.State, len(res.Data), data)
}

func (api *SiteAPI) legalServicesSection(res site.Result[[]transform.LegalService]) presenter.Section {
	cards := make([]presenter.LegalServiceCard, len(res.Data))
	for i, svc := range res.Data {
		cards[i] = api.presenter.LegalServiceCard(svc)
	}
	return presenter.NewSection(presenter.LegalServicesCopy, res.State, len(res.Data), cards)
}

// window positions a carousel at index, wrapping out of range values.
func window[T any](items []T, index, perSlide int) slide[T] {
	slides := carousel.Slides(len(items), perSlide)
	current := carousel.Carousel{}
	current.GoTo(index, slides)
	prev, next := current, current
	return slide[T]{
		Items:  carousel.Window(items, current.Index, perSlide),
		Index:  current.Index,
		Slides: slides,
		Prev:   prev.Prev(slides),
		Next:   next.Next(slides),
	}
}

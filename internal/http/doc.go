// Package http exposes the cached site content as JSON view models.
//
// Routes mount under /api by default:
//   - Page data: /site, /navigation, /settings
//   - Sections: /services?page=N, /services/{slug}, /team?slide=N,
//     /testimonials?index=N, /legal-services
//   - Actions: POST /refetch, POST /subscribe
//   - Operations: /healthz, /metrics
//
// Host applications can register handlers on their own mux as needed.
package http

// Package gateway is the HTTP surface of the land registry: session
// endpoints, guarded property and transaction endpoints, document storage
// and the privacy-policy gate.
package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkurbatov/landledger/internal/common"
)

// NewRouter mounts the API.
//
// Routes:
//
//	POST /api/login                     → auth.Login
//	POST /api/register                  → auth.Register
//	POST /api/logout                    → auth.Logout
//	POST /api/privacy-policy/accept     → auth.AcceptPrivacyPolicy
//	GET  /api/session                   → auth.Session            (session)
//	GET  /api/properties                → registry.ListProperties (session)
//	GET  /api/properties/{id}           → registry.GetProperty    (session)
//	POST /api/properties                → registry.CreateProperty (session, official)
//	GET  /api/transactions              → registry.ListTransactions (session)
//	POST /api/documents                 → docs.Upload             (session, official)
//	GET  /api/documents/*               → docs.DownloadURL        (session)
//
// The privacy-policy gate wraps everything except its allow-list; the role
// gate always sits behind the session gate.
func NewRouter(guard *Guard, auth *AuthHandler, registry *RegistryHandler, docs *DocumentsHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(PrivacyPolicy)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", auth.Login)
		r.Post("/register", auth.Register)
		r.Post("/logout", auth.Logout)
		r.Post("/privacy-policy/accept", auth.AcceptPrivacyPolicy)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireSession)

			r.Get("/session", auth.Session)
			r.Get("/properties", registry.ListProperties)
			r.Get("/properties/{id}", registry.GetProperty)
			r.Get("/transactions", registry.ListTransactions)
			r.Get("/documents/*", docs.DownloadURL)

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireRole(common.RoleOfficial))
				r.Post("/properties", registry.CreateProperty)
				r.Post("/documents", docs.Upload)
			})
		})
	})

	return r
}

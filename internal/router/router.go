// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Nutra server. Routes fall into two groups: the public marketing site
// and the JSON admin API under /admin/api.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"nutra/internal/handlers"
	"nutra/internal/identity"
	"nutra/internal/middleware"
	"nutra/internal/session"
	"nutra/web"
)

// Deps bundles the dependencies the router wires together.
type Deps struct {
	Sessions        *session.Store
	Gate            *identity.Gate
	Auth            *handlers.Auth
	Admin           *handlers.Admin
	Public          *handlers.Public
	WellKnown       *handlers.WellKnown
	LoginLimiter    *middleware.RateLimiter
	WaitlistLimiter *middleware.RateLimiter
	SecureCookies   bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadIdentity(d.Sessions, d.Gate))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Embedded static assets.
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	// App link association files.
	r.Get("/.well-known/apple-app-site-association", d.WellKnown.AppleAppSiteAssociation)
	r.Get("/.well-known/assetlinks.json", d.WellKnown.AssetLinks)

	// Admin JSON API. Everything below is CSRF-protected; everything
	// except login and the session probe also requires an allow-listed
	// admin identity.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.CSRF(d.SecureCookies))

		r.With(d.LoginLimiter.Middleware).Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)
		r.Get("/session", d.Auth.Session)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", d.Admin.ListRecipes)
				r.Post("/", d.Admin.CreateRecipe)
				r.Post("/bulk", d.Admin.BulkRecipes)
				r.Post("/generate-image", d.Admin.GenerateImage)
				r.Post("/upload-photo", d.Admin.UploadPhoto)
				r.Get("/{id}", d.Admin.GetRecipe)
				r.Patch("/{id}", d.Admin.PatchRecipe)
				r.Delete("/{id}", d.Admin.DeleteRecipe)
			})

			r.Route("/premium-config", func(r chi.Router) {
				r.Get("/", d.Admin.ListPremiumConfig)
				r.Post("/", d.Admin.UpsertPremiumConfig)
				r.Patch("/{slug}", d.Admin.PatchPremiumConfig)
			})
		})
	})

	// Public marketing site.
	r.Get("/", d.Public.Home)
	r.Get("/robots.txt", d.Public.Robots)
	r.Get("/sitemap.xml", d.Public.Sitemap)
	r.With(d.WaitlistLimiter.Middleware).Post("/waitlist", d.Public.Waitlist)
	r.Get("/r/{slug}", d.Public.ShortLink)
	r.Get("/legal/{page}", d.Public.LegalRedirect)
	r.Route("/{locale:cs|en}", func(r chi.Router) {
		r.Get("/", d.Public.Landing)
		r.Get("/recipes/{slug}", d.Public.RecipePage)
		r.Get("/legal/{page}", d.Public.Legal)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

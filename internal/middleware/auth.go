// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package middleware provides HTTP middleware for the Nutra server.
package middleware

import (
	"context"
	"net/http"

	"nutra/internal/identity"
	"nutra/internal/session"
)

type contextKey string

const identityKey contextKey = "identity"

// LoadIdentity resolves the request's session cookie into a verified
// identity and stores it on the context. The access token is always
// re-validated against the identity service; a stored session is never
// trusted on its own. Resolution failures leave the context empty and
// the response untouched — cookie cleanup belongs to the session
// endpoints, not to middleware.
func LoadIdentity(sessions *session.Store, gate *identity.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Get(r.Context(), r)
			if err != nil || sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			ident := gate.Resolve(r.Context(), sess)
			if ident == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the verified identity on the context, or nil.
func IdentityFrom(ctx context.Context) *identity.Identity {
	ident, _ := ctx.Value(identityKey).(*identity.Identity)
	return ident
}

// RequireAdmin rejects requests whose context lacks an admin identity.
// Missing cookie, dead session, invalid token, and non-admin user all
// take the same branch: one uniform 401 with no distinguishing detail.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFrom(r.Context())
		if ident == nil || !ident.Admin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

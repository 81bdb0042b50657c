// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"nutra/internal/identity"
	"nutra/internal/session"
)

// Auth groups the admin console authentication endpoints. Credentials
// never touch local storage: sign-in is delegated to the external
// identity service and only the issued access token is kept, inside a
// server-side session.
type Auth struct {
	sessions *session.Store
	idClient *identity.Client
	gate     *identity.Gate
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, idClient *identity.Client, gate *identity.Gate) *Auth {
	return &Auth{sessions: sessions, idClient: idClient, gate: gate}
}

// Login handles POST /admin/api/login. A valid password for a non-admin
// account fails exactly like a wrong password: one uniform 401, so the
// response never reveals whether an account exists or is allow-listed.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := a.idClient.SignInWithPassword(r.Context(), body.Email, body.Password)
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	ident := a.gate.RequireAdmin(r.Context(), &session.Data{AccessToken: token, Email: user.Email})
	if ident == nil {
		// Token is live but the account is not allow-listed; revoke it
		// and deny identically to a bad password.
		if err := a.idClient.SignOut(r.Context(), token); err != nil {
			slog.Warn("sign-out of non-admin login failed", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		AccessToken: token,
		Email:       user.Email,
	}); err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": user.Email})
}

// Logout handles POST /admin/api/logout. Destroys the local session and
// revokes the token upstream, best-effort.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Get(r.Context(), r)
	if err != nil {
		slog.Error("session get failed", "error", err)
	}
	if sess != nil && sess.AccessToken != "" {
		if err := a.idClient.SignOut(r.Context(), sess.AccessToken); err != nil {
			slog.Warn("identity sign-out failed", "error", err)
		}
	}
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"email": nil})
}

// Session handles GET /admin/api/session: reports the signed-in admin
// email, or null. This is the one read path allowed to clear a cookie —
// a session whose token no longer validates is destroyed here rather
// than lingering until expiry.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Get(r.Context(), r)
	if err != nil {
		slog.Error("session get failed", "error", err)
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusOK, map[string]any{"email": nil})
		return
	}

	ident := a.gate.RequireAdmin(r.Context(), sess)
	if ident == nil {
		if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Error("session destroy failed", "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]any{"email": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": sess.Email})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package identity

import (
	"context"

	"nutra/internal/session"
)

// Verifier validates an access token remotely. Satisfied by *Client;
// tests substitute a fake.
type Verifier interface {
	UserFromToken(ctx context.Context, token string) (*User, error)
}

// Identity is a resolved, remotely-validated session: the user the token
// belongs to plus the token itself for downstream sign-out.
type Identity struct {
	User        *User
	AccessToken string
	Admin       bool
}

// Gate resolves sessions into identities and decides admin access.
// A nil result always means "deny"; the cause (no cookie, dead token,
// non-admin user) is deliberately not distinguishable so nothing leaks
// about account existence.
type Gate struct {
	verifier Verifier
	admins   map[string]struct{}
}

// NewGate creates a gate with the configured admin allow-list of user IDs.
func NewGate(verifier Verifier, adminUserIDs []string) *Gate {
	admins := make(map[string]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = struct{}{}
	}
	return &Gate{verifier: verifier, admins: admins}
}

// Resolve validates the session's access token against the identity
// service. Returns nil for a missing session or a rejected token. It
// never mutates response state — stale cookies are cleaned up by the
// explicit sign-out and session-check endpoints, not here.
func (g *Gate) Resolve(ctx context.Context, sess *session.Data) *Identity {
	if sess == nil || sess.AccessToken == "" {
		return nil
	}

	user, err := g.verifier.UserFromToken(ctx, sess.AccessToken)
	if err != nil || user == nil {
		return nil
	}

	_, admin := g.admins[user.ID.String()]
	return &Identity{
		User:        user,
		AccessToken: sess.AccessToken,
		Admin:       admin,
	}
}

// RequireAdmin resolves the session and additionally requires allow-list
// membership. All failure modes return nil through the same branch.
func (g *Gate) RequireAdmin(ctx context.Context, sess *session.Data) *Identity {
	ident := g.Resolve(ctx, sess)
	if ident == nil || !ident.Admin {
		return nil
	}
	return ident
}

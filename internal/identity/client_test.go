// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestSignInWithPassword(t *testing.T) {
	userID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		}
		if r.Header.Get("apikey") != "svc-key" {
			t.Errorf("apikey header = %q", r.Header.Get("apikey"))
		}
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "admin@example.com" || creds.Password != "hunter2" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"user":         User{ID: userID, Email: creds.Email},
		})
	}))
	t.Cleanup(srv.Close)

	// Trailing slash in the base URL must not break path building.
	c := NewClient(srv.URL+"/", "svc-key")

	token, user, err := c.SignInWithPassword(context.Background(), "admin@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %q", token)
	}
	if user.ID != userID || user.Email != "admin@example.com" {
		t.Errorf("user = %+v", user)
	}

	if _, _, err := c.SignInWithPassword(context.Background(), "admin@example.com", "wrong"); err == nil {
		t.Error("expected an error for bad credentials")
	}
}

func TestSignInWithPassword_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": ""})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "svc-key")
	if _, _, err := c.SignInWithPassword(context.Background(), "a@b.c", "x"); err == nil {
		t.Fatal("expected an error when the service returns no token")
	}
}

func TestUserFromToken(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(User{ID: userID, Email: "admin@example.com"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "svc-key")

	user, err := c.UserFromToken(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if user.ID != userID {
		t.Errorf("user = %+v", user)
	}

	if _, err := c.UserFromToken(context.Background(), "revoked"); err == nil {
		t.Error("expected an error for a rejected token")
	}
}

func TestSignOut(t *testing.T) {
	var revoked string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/logout" {
			revoked = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "svc-key")
	if err := c.SignOut(context.Background(), "tok-123"); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if revoked != "Bearer tok-123" {
		t.Errorf("revoked token header = %q", revoked)
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFIssuesCookie(t *testing.T) {
	handler := CSRF(false)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/api/session", nil))

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == CSRFCookieName {
			token = c.Value
			if c.HttpOnly {
				t.Error("CSRF cookie must be JS-readable for the double-submit scheme")
			}
			if c.SameSite != http.SameSiteStrictMode {
				t.Errorf("SameSite = %v, want Strict", c.SameSite)
			}
		}
	}
	if len(token) != csrfTokenLength*2 {
		t.Fatalf("token length = %d, want %d hex chars", len(token), csrfTokenLength*2)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", rec.Code)
	}
}

func TestCSRFSafeMethodsPass(t *testing.T) {
	handler := CSRF(false)(okHandler())
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", method, rec.Code)
		}
	}
}

func TestCSRFRejectsMutations(t *testing.T) {
	handler := CSRF(false)(okHandler())

	tests := []struct {
		name   string
		cookie string
		header string
	}{
		{"no header", "tok-a", ""},
		{"mismatched header", "tok-a", "tok-b"},
		{"no cookie no header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/api/recipes", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestCSRFAcceptsMatchingToken(t *testing.T) {
	handler := CSRF(false)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/admin/api/recipes", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "matching-token"})
	req.Header.Set(CSRFHeaderName, "matching-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetCSRFToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCSRFToken(req); got != "" {
		t.Errorf("token without cookie = %q, want empty", got)
	}
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "abc"})
	if got := GetCSRFToken(req); got != "abc" {
		t.Errorf("token = %q, want abc", got)
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"nutra/internal/models"
	"nutra/internal/store"
)

const (
	maxFeatureSlugLen  = 80
	maxDisplayNameLen  = 200
	maxFreeMonthlyUses = 100_000
)

// ListPremiumConfig handles GET /admin/api/premium-config.
func (a *Admin) ListPremiumConfig(w http.ResponseWriter, r *http.Request) {
	items, err := a.premium.List()
	if err != nil {
		slog.Error("list premium config failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list premium config")
		return
	}
	if items == nil {
		items = []models.PremiumConfig{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"features": items})
}

// UpsertPremiumConfig handles POST /admin/api/premium-config: create or
// fully replace a feature config keyed by slug.
func (a *Admin) UpsertPremiumConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FeatureSlug      string `json:"feature_slug"`
		DisplayName      string `json:"display_name"`
		FreeMonthlyLimit int    `json:"free_monthly_limit"`
		IsPremiumOnly    bool   `json:"is_premium_only"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []FieldError
	body.FeatureSlug = strings.TrimSpace(body.FeatureSlug)
	if body.FeatureSlug == "" {
		errs = append(errs, FieldError{Field: "feature_slug", Message: "feature_slug is required"})
	} else if utf8.RuneCountInString(body.FeatureSlug) > maxFeatureSlugLen {
		errs = append(errs, FieldError{Field: "feature_slug", Message: "feature_slug is too long"})
	}
	body.DisplayName = strings.TrimSpace(body.DisplayName)
	if body.DisplayName == "" {
		errs = append(errs, FieldError{Field: "display_name", Message: "display_name is required"})
	} else if utf8.RuneCountInString(body.DisplayName) > maxDisplayNameLen {
		errs = append(errs, FieldError{Field: "display_name", Message: "display_name is too long"})
	}
	if body.FreeMonthlyLimit < 0 || body.FreeMonthlyLimit > maxFreeMonthlyUses {
		errs = append(errs, FieldError{Field: "free_monthly_limit", Message: "free_monthly_limit is out of range"})
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	saved, err := a.premium.Upsert(&models.PremiumConfig{
		FeatureSlug:      body.FeatureSlug,
		DisplayName:      body.DisplayName,
		FreeMonthlyLimit: body.FreeMonthlyLimit,
		IsPremiumOnly:    body.IsPremiumOnly,
	})
	if err != nil {
		slog.Error("upsert premium config failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save premium config")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// PatchPremiumConfig handles PATCH /admin/api/premium-config/{slug}.
func (a *Admin) PatchPremiumConfig(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	var body struct {
		DisplayName      *string `json:"display_name"`
		FreeMonthlyLimit *int    `json:"free_monthly_limit"`
		IsPremiumOnly    *bool   `json:"is_premium_only"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []FieldError
	if body.DisplayName != nil {
		trimmed := strings.TrimSpace(*body.DisplayName)
		if trimmed == "" {
			errs = append(errs, FieldError{Field: "display_name", Message: "display_name must not be empty"})
		} else if utf8.RuneCountInString(trimmed) > maxDisplayNameLen {
			errs = append(errs, FieldError{Field: "display_name", Message: "display_name is too long"})
		}
		body.DisplayName = &trimmed
	}
	if body.FreeMonthlyLimit != nil && (*body.FreeMonthlyLimit < 0 || *body.FreeMonthlyLimit > maxFreeMonthlyUses) {
		errs = append(errs, FieldError{Field: "free_monthly_limit", Message: "free_monthly_limit is out of range"})
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	updated, err := a.premium.Patch(slugParam, store.PremiumPatch{
		DisplayName:      body.DisplayName,
		FreeMonthlyLimit: body.FreeMonthlyLimit,
		IsPremiumOnly:    body.IsPremiumOnly,
	})
	if err != nil {
		slog.Error("patch premium config failed", "error", err, "slug", slugParam)
		writeError(w, http.StatusInternalServerError, "could not update premium config")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "feature not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nutra/internal/ai"
	"nutra/internal/bulk"
	"nutra/internal/cache"
	"nutra/internal/middleware"
	"nutra/internal/models"
	"nutra/internal/photos"
	"nutra/internal/slug"
	"nutra/internal/store"
)

// Admin groups the JSON endpoints behind the admin gate. pipeline and
// registry may be nil when storage or AI is not configured; the affected
// endpoints then answer 503 instead of failing at startup.
type Admin struct {
	recipes   *store.RecipeStore
	premium   *store.PremiumStore
	pageCache *cache.PageCache
	pipeline  *photos.Pipeline
	executor  *bulk.Executor
	registry  *ai.Registry
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(recipes *store.RecipeStore, premium *store.PremiumStore, pageCache *cache.PageCache, pipeline *photos.Pipeline, executor *bulk.Executor, registry *ai.Registry) *Admin {
	return &Admin{
		recipes:   recipes,
		premium:   premium,
		pageCache: pageCache,
		pipeline:  pipeline,
		executor:  executor,
		registry:  registry,
	}
}

// ListRecipes handles GET /admin/api/recipes with optional filters:
// visibility, q (name/description search), include_deleted, limit, offset.
func (a *Admin) ListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Search:         q.Get("q"),
		IncludeDeleted: q.Get("include_deleted") == "true",
	}
	if v := q.Get("visibility"); v != "" {
		if !models.ValidVisibility(v) {
			writeError(w, http.StatusBadRequest, "invalid visibility filter")
			return
		}
		filter.Visibility = models.Visibility(v)
	}
	if s := q.Get("limit"); s != "" {
		filter.Limit, _ = strconv.Atoi(s)
	}
	if s := q.Get("offset"); s != "" {
		filter.Offset, _ = strconv.Atoi(s)
	}

	items, err := a.recipes.List(filter)
	if err != nil {
		slog.Error("list recipes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list recipes")
		return
	}
	if items == nil {
		items = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": items})
}

// CreateRecipe handles POST /admin/api/recipes.
func (a *Admin) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var in recipeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validateRecipe(&in, false); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	recipe := &models.Recipe{
		Servings:   1,
		Difficulty: models.DifficultyMedium,
		Visibility: models.VisibilityPrivate,
	}
	applyRecipeInput(recipe, &in)
	if ident := middleware.IdentityFrom(r.Context()); ident != nil {
		recipe.CreatedBy = &ident.User.ID
	}

	created, err := a.recipes.Create(recipe)
	if err != nil {
		slog.Error("create recipe failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create recipe")
		return
	}

	a.invalidatePublicPages(r.Context(), created)
	writeJSON(w, http.StatusCreated, created)
}

// GetRecipe handles GET /admin/api/recipes/{id}. The admin view sees
// every recipe, soft-deleted ones included.
func (a *Admin) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	recipe, err := a.recipes.FindByID(id)
	if err != nil {
		slog.Error("find recipe failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not load recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// PatchRecipe handles PATCH /admin/api/recipes/{id}: a sanitized partial
// update. Absent fields stay as they are; present fields are validated
// strictly before anything is written.
func (a *Admin) PatchRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	var in recipeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validateRecipe(&in, true); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	recipe, err := a.recipes.FindByID(id)
	if err != nil {
		slog.Error("find recipe failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not load recipe")
		return
	}
	if recipe == nil || recipe.DeletedAt != nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	oldRouteSlug := slug.Canonical(recipe.ID, recipe.Slug)
	applyRecipeInput(recipe, &in)

	if err := a.recipes.Update(recipe); err != nil {
		slog.Error("update recipe failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not update recipe")
		return
	}

	a.pageCache.InvalidateRecipe(r.Context(), oldRouteSlug)
	a.invalidatePublicPages(r.Context(), recipe)

	updated, err := a.recipes.FindByID(id)
	if err != nil || updated == nil {
		slog.Error("reload recipe failed", "error", err, "id", id)
		writeJSON(w, http.StatusOK, recipe)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteRecipe handles DELETE /admin/api/recipes/{id}. Single-recipe
// deletion is a soft delete; only the bulk path removes rows.
func (a *Admin) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	recipe, err := a.recipes.FindByID(id)
	if err != nil {
		slog.Error("find recipe failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not load recipe")
		return
	}
	if recipe == nil || recipe.DeletedAt != nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	deleted, err := a.recipes.SoftDelete(id)
	if err != nil {
		slog.Error("soft delete recipe failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not delete recipe")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	a.invalidatePublicPages(r.Context(), recipe)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// invalidatePublicPages drops every cached page the recipe could appear
// on: its own page in both locales, the landing pages, and the sitemap.
func (a *Admin) invalidatePublicPages(ctx context.Context, r *models.Recipe) {
	a.pageCache.InvalidateRecipe(ctx, slug.Canonical(r.ID, r.Slug))
	a.pageCache.Invalidate(ctx, cache.LandingKey("cs"))
	a.pageCache.Invalidate(ctx, cache.LandingKey("en"))
	a.pageCache.Invalidate(ctx, cache.SitemapKey)
}

// recipeID parses the {id} URL parameter, answering 400 on garbage.
func recipeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return uuid.Nil, false
	}
	return id, true
}

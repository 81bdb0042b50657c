// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"nutra/internal/photos"
	"nutra/internal/slug"
)

// UploadPhoto handles POST /admin/api/recipes/upload-photo: a multipart
// form with a "file" part and an optional "recipe_id" field. Without a
// recipe_id the photo is stored under a temporary key and only its
// metadata is returned.
func (a *Admin) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if a.pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "photo storage is not configured")
		return
	}

	// Allow a little slack over the photo limit for the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, photos.MaxPhotoBytes+1<<20)
	if err := r.ParseMultipartForm(photos.MaxPhotoBytes + 1<<20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "photo exceeds the 10 MiB limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not read upload")
		return
	}

	var recipeID *uuid.UUID
	if raw := r.FormValue("recipe_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid recipe_id")
			return
		}
		recipeID = &id
	}

	meta, err := a.pipeline.Ingest(r.Context(), photos.Upload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, recipeID)
	if err != nil {
		switch {
		case errors.Is(err, photos.ErrTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, photos.ErrUnsupportedType):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, photos.ErrRecipeNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			slog.Error("photo ingest failed", "error", err)
			writeError(w, http.StatusInternalServerError, "photo upload failed")
		}
		return
	}

	if recipeID != nil {
		if recipe, err := a.recipes.FindByID(*recipeID); err == nil && recipe != nil {
			a.pageCache.InvalidateRecipe(r.Context(), slug.Canonical(recipe.ID, recipe.Slug))
		}
	}

	writeJSON(w, http.StatusOK, meta)
}

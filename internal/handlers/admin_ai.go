// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"nutra/internal/bulk"
	"nutra/internal/slug"
)

const (
	maxDishNameLen      = 120
	maxGenIngredients   = 50
	maxGenIngredientLen = 80
)

// GenerateImage handles POST /admin/api/recipes/generate-image:
// {"recipe_id"?: "...", "dish_name": "...", "ingredients": [...]}.
// With a recipe_id the generated image is attached to the recipe; without
// one the raw image comes back base64-encoded for preview.
func (a *Admin) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil || a.registry.ActiveName() == "" {
		writeError(w, http.StatusServiceUnavailable, "image generation is not configured")
		return
	}

	var body struct {
		RecipeID    string   `json:"recipe_id"`
		DishName    string   `json:"dish_name"`
		Ingredients []string `json:"ingredients"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []FieldError
	dish := strings.TrimSpace(body.DishName)
	if dish == "" {
		errs = append(errs, FieldError{Field: "dish_name", Message: "dish_name is required"})
	} else if utf8.RuneCountInString(dish) > maxDishNameLen {
		errs = append(errs, FieldError{Field: "dish_name", Message: fmt.Sprintf("dish_name is too long (max %d characters)", maxDishNameLen)})
	}
	if len(body.Ingredients) == 0 {
		errs = append(errs, FieldError{Field: "ingredients", Message: "at least one ingredient is required"})
	} else if len(body.Ingredients) > maxGenIngredients {
		errs = append(errs, FieldError{Field: "ingredients", Message: fmt.Sprintf("too many ingredients (max %d)", maxGenIngredients)})
	}
	for i, ing := range body.Ingredients {
		if utf8.RuneCountInString(ing) > maxGenIngredientLen {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("ingredients[%d]", i),
				Message: fmt.Sprintf("ingredient is too long (max %d characters)", maxGenIngredientLen),
			})
		}
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	var recipeID *uuid.UUID
	if body.RecipeID != "" {
		id, err := uuid.Parse(body.RecipeID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid recipe_id")
			return
		}
		recipeID = &id
	}
	if recipeID != nil && a.pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "photo storage is not configured")
		return
	}

	prompt := bulk.BuildPrompt(dish, bulk.NormalizeIngredients(body.Ingredients))
	data, contentType, err := a.registry.GenerateImage(r.Context(), prompt)
	if err != nil {
		slog.Error("image generation failed", "provider", a.registry.ActiveName(), "error", err)
		writeError(w, http.StatusBadGateway, "image generation failed")
		return
	}

	if recipeID == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"content_type": contentType,
			"image_base64": base64.StdEncoding.EncodeToString(data),
		})
		return
	}

	meta, err := a.pipeline.IngestGenerated(r.Context(), *recipeID, data, contentType)
	if err != nil {
		slog.Error("generated image attach failed", "recipe_id", recipeID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not store generated image")
		return
	}

	if recipe, err := a.recipes.FindByID(*recipeID); err == nil && recipe != nil {
		a.pageCache.InvalidateRecipe(r.Context(), slug.Canonical(recipe.ID, recipe.Slug))
	}
	writeJSON(w, http.StatusOK, meta)
}

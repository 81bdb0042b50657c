// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"nutra/internal/bulk"
	"nutra/internal/cache"
)

// maxBulkIDs bounds one bulk request. The console paginates at 50, so
// anything larger than this is a malformed client.
const maxBulkIDs = 500

// BulkRecipes handles POST /admin/api/recipes/bulk:
// {"action": "...", "recipe_ids": [...]}.
func (a *Admin) BulkRecipes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action    string   `json:"action"`
		RecipeIDs []string `json:"recipe_ids"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.RecipeIDs) == 0 {
		writeError(w, http.StatusBadRequest, "recipe_ids is required")
		return
	}
	if len(body.RecipeIDs) > maxBulkIDs {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many recipe_ids (max %d)", maxBulkIDs))
		return
	}

	ids := make([]uuid.UUID, 0, len(body.RecipeIDs))
	for _, raw := range body.RecipeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid recipe id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	result, err := a.executor.Run(r.Context(), bulk.Action(body.Action), ids)
	if err != nil {
		if errors.Is(err, bulk.ErrUnknownAction) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("bulk action failed", "action", body.Action, "error", err)
		writeError(w, http.StatusInternalServerError, "bulk action failed")
		return
	}

	// Visibility and deletion change what the public site shows; drop
	// every cached page rather than chasing individual slugs.
	if bulk.Action(body.Action) != bulk.ActionGenerateImages {
		a.pageCache.InvalidateAll(r.Context())
	} else {
		a.pageCache.Invalidate(r.Context(), cache.SitemapKey)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":  result,
		"summary": result.Summary(),
	})
}

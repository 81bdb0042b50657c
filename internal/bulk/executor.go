// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package bulk executes admin batch actions over recipe IDs. Visibility
// changes and deletion run as single batched statements; image generation
// runs as a sequential server-side loop with per-item failure isolation.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"nutra/internal/models"
	"nutra/internal/photos"
)

// Action is a bulk operation name as sent by the admin console.
type Action string

const (
	ActionSetPrivate     Action = "set_private"
	ActionSetUnlisted    Action = "set_unlisted"
	ActionSetPublic      Action = "set_public"
	ActionDelete         Action = "delete"
	ActionGenerateImages Action = "generate_images"
)

// ErrUnknownAction is returned for an unrecognized action name.
var ErrUnknownAction = errors.New("unknown bulk action")

// visibilityFor maps visibility actions to their target value.
var visibilityFor = map[Action]models.Visibility{
	ActionSetPrivate:  models.VisibilityPrivate,
	ActionSetUnlisted: models.VisibilityUnlisted,
	ActionSetPublic:   models.VisibilityPublic,
}

// Recipes is the subset of the recipe store the executor needs.
type Recipes interface {
	FindByID(id uuid.UUID) (*models.Recipe, error)
	SetVisibilityByIDs(ids []uuid.UUID, v models.Visibility) (int64, error)
	HardDeleteByIDs(ids []uuid.UUID) (int64, error)
}

// Generator produces an image for a prompt.
type Generator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// Attacher stores a generated image on a recipe.
type Attacher interface {
	IngestGenerated(ctx context.Context, recipeID uuid.UUID, data []byte, contentType string) (*photos.Meta, error)
}

// Failure records one item that could not be processed.
type Failure struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// Result reports the outcome of a bulk run. For generate_images the
// counters always reconcile: every requested ID lands in exactly one of
// generated, skipped_existing, skipped_invalid, or failed.
type Result struct {
	Action          Action    `json:"action"`
	Total           int       `json:"total"`
	Processed       int       `json:"processed"`
	Affected        int64     `json:"affected"`
	Generated       int       `json:"generated,omitempty"`
	SkippedExisting int       `json:"skipped_existing,omitempty"`
	SkippedInvalid  int       `json:"skipped_invalid,omitempty"`
	Failed          []Failure `json:"failed,omitempty"`
}

// Summary renders a one-line human-readable account of the run.
func (r *Result) Summary() string {
	switch r.Action {
	case ActionGenerateImages:
		return fmt.Sprintf("%d recipes: %d images generated, %d already had photos, %d invalid, %d failed",
			r.Total, r.Generated, r.SkippedExisting, r.SkippedInvalid, len(r.Failed))
	case ActionDelete:
		return fmt.Sprintf("%d of %d recipes deleted", r.Affected, r.Total)
	default:
		return fmt.Sprintf("%d of %d recipes updated", r.Affected, r.Total)
	}
}

// Executor runs bulk actions.
type Executor struct {
	recipes   Recipes
	generator Generator
	attacher  Attacher
}

// NewExecutor creates a bulk executor. generator and attacher may be nil
// when image generation is not configured; generate_images then fails
// every item instead of erroring the whole request.
func NewExecutor(recipes Recipes, generator Generator, attacher Attacher) *Executor {
	return &Executor{recipes: recipes, generator: generator, attacher: attacher}
}

// Run executes one action over the given recipe IDs.
func (e *Executor) Run(ctx context.Context, action Action, ids []uuid.UUID) (*Result, error) {
	res := &Result{Action: action, Total: len(ids)}

	if v, ok := visibilityFor[action]; ok {
		affected, err := e.recipes.SetVisibilityByIDs(ids, v)
		if err != nil {
			return nil, fmt.Errorf("bulk %s: %w", action, err)
		}
		res.Affected = affected
		res.Processed = len(ids)
		return res, nil
	}

	switch action {
	case ActionDelete:
		// Bulk delete is permanent. The single-recipe delete soft-deletes;
		// the two paths are intentionally different.
		affected, err := e.recipes.HardDeleteByIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("bulk delete: %w", err)
		}
		res.Affected = affected
		res.Processed = len(ids)
		return res, nil
	case ActionGenerateImages:
		e.generateImages(ctx, ids, res)
		return res, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// generateImages walks the IDs sequentially. One item's failure never
// aborts the loop; each ID ends up in exactly one counter bucket.
func (e *Executor) generateImages(ctx context.Context, ids []uuid.UUID, res *Result) {
	for _, id := range ids {
		res.Processed++

		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, Failure{ID: id, Message: "canceled"})
			continue
		}
		if e.generator == nil || e.attacher == nil {
			res.Failed = append(res.Failed, Failure{ID: id, Message: "image generation not configured"})
			continue
		}

		recipe, err := e.recipes.FindByID(id)
		if err != nil {
			res.Failed = append(res.Failed, Failure{ID: id, Message: err.Error()})
			continue
		}
		if recipe == nil || recipe.DeletedAt != nil {
			res.Failed = append(res.Failed, Failure{ID: id, Message: "recipe not found"})
			continue
		}
		if recipe.HasPhoto() {
			res.SkippedExisting++
			continue
		}

		name := strings.TrimSpace(recipe.Name)
		ingredients := NormalizeIngredients(ingredientNames(recipe.Ingredients))
		if name == "" || len(ingredients) == 0 {
			res.SkippedInvalid++
			continue
		}

		data, contentType, err := e.generator.GenerateImage(ctx, BuildPrompt(name, ingredients))
		if err != nil {
			slog.Warn("bulk image generation failed", "recipe_id", id, "error", err)
			res.Failed = append(res.Failed, Failure{ID: id, Message: err.Error()})
			continue
		}
		if _, err := e.attacher.IngestGenerated(ctx, id, data, contentType); err != nil {
			slog.Warn("bulk image attach failed", "recipe_id", id, "error", err)
			res.Failed = append(res.Failed, Failure{ID: id, Message: err.Error()})
			continue
		}
		res.Generated++
	}
}

const (
	// maxIngredientLen drops garbage entries that would pollute a prompt.
	maxIngredientLen = 80

	// maxPromptIngredients caps how many ingredients feed the prompt.
	maxPromptIngredients = 50
)

// NormalizeIngredients trims entries, drops empties and entries longer
// than 80 characters, and caps the list at 50 items.
func NormalizeIngredients(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || len(item) > maxIngredientLen {
			continue
		}
		out = append(out, item)
		if len(out) == maxPromptIngredients {
			break
		}
	}
	return out
}

// BuildPrompt composes the image generation prompt from a dish name and
// its normalized ingredients.
func BuildPrompt(dishName string, ingredients []string) string {
	var b strings.Builder
	b.WriteString("Professional food photography of ")
	b.WriteString(dishName)
	if len(ingredients) > 0 {
		b.WriteString(", made with ")
		b.WriteString(strings.Join(ingredients, ", "))
	}
	b.WriteString(". Appetizing plating, natural light, shallow depth of field, no text or watermarks.")
	return b.String()
}

func ingredientNames(list models.IngredientList) []string {
	names := make([]string, 0, len(list))
	for _, ing := range list {
		names = append(names, ing.Name)
	}
	return names
}

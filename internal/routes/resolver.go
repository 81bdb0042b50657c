// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package routes resolves public recipe URLs. A route slug may be the
// canonical "{id}-{slug}" form, a bare stored slug, or a legacy suffix;
// anything non-canonical resolves and then redirects.
package routes

import (
	"context"
	"fmt"

	"nutra/internal/models"
	"nutra/internal/slug"

	"github.com/google/uuid"
)

// Finder is the subset of the recipe store the resolver needs. Only
// publicly resolvable recipes (non-deleted, PUBLIC or UNLISTED) are
// reachable through it.
type Finder interface {
	FindVisibleByID(id uuid.UUID) (*models.Recipe, error)
	FindVisibleBySlug(slugVal string) (*models.Recipe, error)
	FindVisibleBySlugSuffix(suffix string) (*models.Recipe, error)
}

// Resolution is the outcome of resolving a recipe URL. Exactly one of
// Recipe or RedirectPath is set; both empty means not found.
type Resolution struct {
	Recipe       *models.Recipe
	RedirectPath string
	Permanent    bool
}

// Resolver maps locale + route slug to a recipe or redirect.
type Resolver struct {
	finder Finder
}

// NewResolver creates a resolver over the given finder.
func NewResolver(finder Finder) *Resolver {
	return &Resolver{finder: finder}
}

// Resolve looks up rawSlug in order: UUID prefix, exact slug, then
// case-insensitive suffix. A hit under the wrong locale redirects
// permanently to the recipe's own locale; a hit under a non-canonical
// slug redirects temporarily so legacy links keep working without
// poisoning caches.
func (r *Resolver) Resolve(ctx context.Context, locale, rawSlug string) (*Resolution, error) {
	recipe, err := r.lookup(rawSlug)
	if err != nil {
		return nil, fmt.Errorf("resolve recipe route: %w", err)
	}
	if recipe == nil {
		return &Resolution{}, nil
	}

	canonicalSlug := slug.Canonical(recipe.ID, recipe.Slug)
	wantLocale := recipe.Locale()

	if locale != wantLocale {
		return &Resolution{
			RedirectPath: recipePath(wantLocale, canonicalSlug),
			Permanent:    true,
		}, nil
	}
	if rawSlug != canonicalSlug {
		return &Resolution{
			RedirectPath: recipePath(locale, canonicalSlug),
			Permanent:    false,
		}, nil
	}
	return &Resolution{Recipe: recipe}, nil
}

// lookup tries each strategy in order and stops at the first hit. A
// UUID-shaped prefix that matches no recipe still falls through to the
// slug lookups, so a stored slug that happens to start with a UUID
// keeps resolving.
func (r *Resolver) lookup(rawSlug string) (*models.Recipe, error) {
	if id, _, ok := slug.SplitIDPrefix(rawSlug); ok {
		recipe, err := r.finder.FindVisibleByID(id)
		if err != nil || recipe != nil {
			return recipe, err
		}
	}
	recipe, err := r.finder.FindVisibleBySlug(rawSlug)
	if err != nil || recipe != nil {
		return recipe, err
	}
	return r.finder.FindVisibleBySlugSuffix(rawSlug)
}

func recipePath(locale, slugVal string) string {
	return "/" + locale + "/recipes/" + slugVal
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store is the thin query layer over PostgreSQL. One store struct
// per entity; stores translate typed filters into SQL and scan rows back
// into models. Not-found is (nil, nil), never an error.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nutra/internal/models"
)

// RecipeStore handles all recipe-related database operations. It is
// shared by the public pages and the admin endpoints; the visibility
// rules differ per query, not per store.
type RecipeStore struct {
	db *sql.DB
}

// NewRecipeStore creates a new RecipeStore with the given database connection.
func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// recipeColumns lists the columns selected in recipe queries.
const recipeColumns = `id, slug, name, description, servings, prep_minutes, cook_minutes,
	difficulty, portion_grams, health_score, language, ingredients, steps, nutrition,
	health_benefits, warnings, dietary_tags, time_of_day, share_visibility,
	photo_path, photo_url, photo_thumb_path, photo_width, photo_height, photo_size_bytes,
	moderation_status, moderated_at, created_by, created_at, updated_at, deleted_at`

// publiclyVisible is the WHERE fragment for recipes the public surface
// may resolve: not soft-deleted, shared as PUBLIC or UNLISTED.
const publiclyVisible = `deleted_at IS NULL AND share_visibility IN ('PUBLIC', 'UNLISTED')`

// scanRecipe scans a recipe row from the result set.
func scanRecipe(scanner interface{ Scan(...any) error }) (*models.Recipe, error) {
	var r models.Recipe
	err := scanner.Scan(
		&r.ID, &r.Slug, &r.Name, &r.Description, &r.Servings, &r.PrepMinutes, &r.CookMinutes,
		&r.Difficulty, &r.PortionGrams, &r.HealthScore, &r.Language, &r.Ingredients, &r.Steps,
		&r.Nutrition, &r.HealthBenefits, &r.Warnings, &r.DietaryTags, &r.TimeOfDay, &r.Visibility,
		&r.PhotoPath, &r.PhotoURL, &r.PhotoThumbPath, &r.PhotoWidth, &r.PhotoHeight, &r.PhotoSizeBytes,
		&r.ModerationStatus, &r.ModeratedAt, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindByID retrieves a recipe by its UUID regardless of visibility or
// soft-delete state. Admin console use only.
func (s *RecipeStore) FindByID(id uuid.UUID) (*models.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe by id: %w", err)
	}
	return r, nil
}

// FindVisibleByID retrieves a publicly resolvable recipe by ID.
func (s *RecipeStore) FindVisibleByID(id uuid.UUID) (*models.Recipe, error) {
	row := s.db.QueryRow(
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1 AND `+publiclyVisible, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find visible recipe by id: %w", err)
	}
	return r, nil
}

// FindVisibleBySlug retrieves a publicly resolvable recipe by exact slug.
// On duplicate slugs the most recently updated wins.
func (s *RecipeStore) FindVisibleBySlug(slugVal string) (*models.Recipe, error) {
	row := s.db.QueryRow(`
		SELECT `+recipeColumns+` FROM recipes
		WHERE slug = $1 AND `+publiclyVisible+`
		ORDER BY updated_at DESC
		LIMIT 1
	`, slugVal)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe by slug: %w", err)
	}
	return r, nil
}

// FindVisibleBySlugSuffix retrieves a recipe whose slug ends in
// "-{suffix}" (case-insensitive). Supports legacy URLs that predate the
// ID prefix in slugs. The most recently updated match wins.
func (s *RecipeStore) FindVisibleBySlugSuffix(suffix string) (*models.Recipe, error) {
	pattern := "%-" + escapeLike(suffix)
	row := s.db.QueryRow(`
		SELECT `+recipeColumns+` FROM recipes
		WHERE slug ILIKE $1 AND `+publiclyVisible+`
		ORDER BY updated_at DESC
		LIMIT 1
	`, pattern)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe by slug suffix: %w", err)
	}
	return r, nil
}

// Filter narrows admin recipe listings.
type Filter struct {
	Visibility     models.Visibility // empty = any
	Search         string            // matches name or description
	CreatedBy      *uuid.UUID
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// List returns recipes matching the filter, newest updates first.
func (s *RecipeStore) List(f Filter) ([]models.Recipe, error) {
	var conds []string
	var args []any

	if !f.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if f.Visibility != "" {
		args = append(args, f.Visibility)
		conds = append(conds, fmt.Sprintf("share_visibility = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if f.CreatedBy != nil {
		args = append(args, *f.CreatedBy)
		conds = append(conds, fmt.Sprintf("created_by = $%d", len(args)))
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY updated_at DESC`

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var items []models.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// Create inserts a new recipe and returns it with generated fields.
func (s *RecipeStore) Create(r *models.Recipe) (*models.Recipe, error) {
	row := s.db.QueryRow(`
		INSERT INTO recipes (slug, name, description, servings, prep_minutes, cook_minutes,
			difficulty, portion_grams, health_score, language, ingredients, steps, nutrition,
			health_benefits, warnings, dietary_tags, time_of_day, share_visibility, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING `+recipeColumns,
		r.Slug, r.Name, r.Description, r.Servings, r.PrepMinutes, r.CookMinutes,
		r.Difficulty, r.PortionGrams, r.HealthScore, r.Language, r.Ingredients, r.Steps, r.Nutrition,
		r.HealthBenefits, r.Warnings, r.DietaryTags, r.TimeOfDay, r.Visibility, r.CreatedBy,
	)
	created, err := scanRecipe(row)
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return created, nil
}

// Update writes the full sanitized row back. Photo and audit fields are
// managed by their own statements and left untouched here.
func (s *RecipeStore) Update(r *models.Recipe) error {
	_, err := s.db.Exec(`
		UPDATE recipes SET
			slug = $1, name = $2, description = $3, servings = $4, prep_minutes = $5,
			cook_minutes = $6, difficulty = $7, portion_grams = $8, health_score = $9,
			language = $10, ingredients = $11, steps = $12, nutrition = $13,
			health_benefits = $14, warnings = $15, dietary_tags = $16, time_of_day = $17,
			share_visibility = $18, updated_at = NOW()
		WHERE id = $19
	`, r.Slug, r.Name, r.Description, r.Servings, r.PrepMinutes,
		r.CookMinutes, r.Difficulty, r.PortionGrams, r.HealthScore,
		r.Language, r.Ingredients, r.Steps, r.Nutrition,
		r.HealthBenefits, r.Warnings, r.DietaryTags, r.TimeOfDay,
		r.Visibility, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return nil
}

// PhotoUpdate carries the photo metadata persisted after ingestion.
type PhotoUpdate struct {
	Path             string
	URL              string
	ThumbPath        *string
	Width            *int
	Height           *int
	SizeBytes        int64
	ModerationStatus models.ModerationStatus
	ModeratedAt      time.Time
}

// UpdatePhoto persists photo metadata onto a recipe record.
func (s *RecipeStore) UpdatePhoto(id uuid.UUID, p PhotoUpdate) error {
	res, err := s.db.Exec(`
		UPDATE recipes SET
			photo_path = $1, photo_url = $2, photo_thumb_path = $3, photo_width = $4,
			photo_height = $5, photo_size_bytes = $6, moderation_status = $7,
			moderated_at = $8, updated_at = NOW()
		WHERE id = $9
	`, p.Path, p.URL, p.ThumbPath, p.Width, p.Height, p.SizeBytes,
		p.ModerationStatus, p.ModeratedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update recipe photo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recipe photo: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update recipe photo: recipe %s not found", id)
	}
	return nil
}

// SoftDelete marks a recipe as deleted without removing the row. Used by
// the single-recipe admin delete.
func (s *RecipeStore) SoftDelete(id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE recipes SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete recipe: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete recipe: %w", err)
	}
	return affected > 0, nil
}

// SetVisibilityByIDs applies one visibility to a set of recipes in a
// single batched statement. Returns the affected-row count.
func (s *RecipeStore) SetVisibilityByIDs(ids []uuid.UUID, v models.Visibility) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, ids2 := idArgs(ids, 2)
	args := append([]any{v}, ids2...)
	res, err := s.db.Exec(
		`UPDATE recipes SET share_visibility = $1, updated_at = NOW() WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("set visibility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set visibility: %w", err)
	}
	return affected, nil
}

// HardDeleteByIDs permanently removes a set of recipes in one statement.
// This is the bulk-admin path; the single-recipe path soft-deletes. The
// asymmetry is inherited behavior and kept deliberately distinct.
func (s *RecipeStore) HardDeleteByIDs(ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := idArgs(ids, 1)
	res, err := s.db.Exec(`DELETE FROM recipes WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("hard delete recipes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("hard delete recipes: %w", err)
	}
	return affected, nil
}

// SitemapEntry is the minimal projection for sitemap generation.
type SitemapEntry struct {
	ID        uuid.UUID
	Slug      string
	Language  *string
	UpdatedAt time.Time
}

// ListPublicForSitemap returns PUBLIC, non-deleted recipes. UNLISTED
// recipes are resolvable but never listed.
func (s *RecipeStore) ListPublicForSitemap() ([]SitemapEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, slug, language, updated_at FROM recipes
		WHERE deleted_at IS NULL AND share_visibility = 'PUBLIC'
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sitemap recipes: %w", err)
	}
	defer rows.Close()

	var entries []SitemapEntry
	for rows.Next() {
		var e SitemapEntry
		if err := rows.Scan(&e.ID, &e.Slug, &e.Language, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sitemap entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// idArgs builds "$n, $n+1, ..." placeholders and the matching args slice
// for an IN clause, starting at placeholder number start.
func idArgs(ids []uuid.UUID, start int) (string, []any) {
	parts := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("$%d", start+i)
		args[i] = id
	}
	return strings.Join(parts, ", "), args
}

// escapeLike escapes LIKE/ILIKE metacharacters in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"nutra/internal/models"
)

// PremiumStore handles premium feature configuration rows.
type PremiumStore struct {
	db *sql.DB
}

// NewPremiumStore creates a new PremiumStore with the given database connection.
func NewPremiumStore(db *sql.DB) *PremiumStore {
	return &PremiumStore{db: db}
}

const premiumColumns = `feature_slug, display_name, free_monthly_limit, is_premium_only, created_at, updated_at`

func scanPremium(scanner interface{ Scan(...any) error }) (*models.PremiumConfig, error) {
	var c models.PremiumConfig
	err := scanner.Scan(&c.FeatureSlug, &c.DisplayName, &c.FreeMonthlyLimit,
		&c.IsPremiumOnly, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all premium feature configs ordered by slug.
func (s *PremiumStore) List() ([]models.PremiumConfig, error) {
	rows, err := s.db.Query(`SELECT ` + premiumColumns + ` FROM premium_config ORDER BY feature_slug`)
	if err != nil {
		return nil, fmt.Errorf("list premium config: %w", err)
	}
	defer rows.Close()

	var items []models.PremiumConfig
	for rows.Next() {
		c, err := scanPremium(rows)
		if err != nil {
			return nil, fmt.Errorf("scan premium config: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindBySlug retrieves one feature config by its slug.
func (s *PremiumStore) FindBySlug(slug string) (*models.PremiumConfig, error) {
	row := s.db.QueryRow(`SELECT `+premiumColumns+` FROM premium_config WHERE feature_slug = $1`, slug)
	c, err := scanPremium(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find premium config: %w", err)
	}
	return c, nil
}

// Upsert inserts or fully replaces a feature config keyed by slug.
func (s *PremiumStore) Upsert(c *models.PremiumConfig) (*models.PremiumConfig, error) {
	row := s.db.QueryRow(`
		INSERT INTO premium_config (feature_slug, display_name, free_monthly_limit, is_premium_only)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (feature_slug) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			free_monthly_limit = EXCLUDED.free_monthly_limit,
			is_premium_only = EXCLUDED.is_premium_only,
			updated_at = NOW()
		RETURNING `+premiumColumns,
		c.FeatureSlug, c.DisplayName, c.FreeMonthlyLimit, c.IsPremiumOnly,
	)
	saved, err := scanPremium(row)
	if err != nil {
		return nil, fmt.Errorf("upsert premium config: %w", err)
	}
	return saved, nil
}

// PremiumPatch carries the optional fields of a partial update. Nil
// fields are left unchanged.
type PremiumPatch struct {
	DisplayName      *string
	FreeMonthlyLimit *int
	IsPremiumOnly    *bool
}

// Patch applies a partial update to a feature config. Returns nil when
// the slug does not exist.
func (s *PremiumStore) Patch(slug string, p PremiumPatch) (*models.PremiumConfig, error) {
	var sets []string
	var args []any

	if p.DisplayName != nil {
		args = append(args, *p.DisplayName)
		sets = append(sets, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if p.FreeMonthlyLimit != nil {
		args = append(args, *p.FreeMonthlyLimit)
		sets = append(sets, fmt.Sprintf("free_monthly_limit = $%d", len(args)))
	}
	if p.IsPremiumOnly != nil {
		args = append(args, *p.IsPremiumOnly)
		sets = append(sets, fmt.Sprintf("is_premium_only = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.FindBySlug(slug)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, slug)
	query := fmt.Sprintf(`UPDATE premium_config SET %s WHERE feature_slug = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), premiumColumns)

	row := s.db.QueryRow(query, args...)
	c, err := scanPremium(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("patch premium config: %w", err)
	}
	return c, nil
}

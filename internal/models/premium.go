// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// PremiumConfig is a single keyed row of premium-feature configuration.
// Rows are mutated via direct upsert/patch; there is no versioning.
type PremiumConfig struct {
	FeatureSlug      string    `json:"feature_slug"`
	DisplayName      string    `json:"display_name"`
	FreeMonthlyLimit int       `json:"free_monthly_limit"`
	IsPremiumOnly    bool      `json:"is_premium_only"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

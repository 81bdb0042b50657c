// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Difficulty represents how hard a recipe is to prepare.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ValidDifficulty reports whether s is a known difficulty value.
func ValidDifficulty(s string) bool {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Visibility controls who can see a recipe on the public site.
type Visibility string

const (
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityUnlisted Visibility = "UNLISTED"
	VisibilityPublic   Visibility = "PUBLIC"
)

// ValidVisibility reports whether s is a known visibility value.
func ValidVisibility(s string) bool {
	switch Visibility(s) {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityPublic:
		return true
	}
	return false
}

// MealTime is a time-of-day slot a recipe is suited for.
type MealTime string

const (
	MealTimeBreakfast MealTime = "BREAKFAST"
	MealTimeLunch     MealTime = "LUNCH"
	MealTimeDinner    MealTime = "DINNER"
	MealTimeSnack     MealTime = "SNACK"
)

// ValidMealTime reports whether s is a known time-of-day value.
func ValidMealTime(s string) bool {
	switch MealTime(s) {
	case MealTimeBreakfast, MealTimeLunch, MealTimeDinner, MealTimeSnack:
		return true
	}
	return false
}

// ModerationStatus is the outcome of the automated food-photo check.
// "error" means the check itself failed (transport or upstream error) and
// is deliberately kept distinct from "rejected" so the admin console can
// show "inconclusive" instead of a hard rejection.
type ModerationStatus string

const (
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
	ModerationError    ModerationStatus = "error"
)

// Ingredient is one entry in a recipe's ordered ingredient list.
// Amount and unit are optional ("salt", "2 tbsp butter").
type Ingredient struct {
	Name   string   `json:"name"`
	Amount *float64 `json:"amount,omitempty"`
	Unit   *string  `json:"unit,omitempty"`
}

// Macros is a macro-nutrient breakdown in grams (calories in kcal).
type Macros struct {
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
}

// Nutrition holds the per-serving breakdown and, when known, the totals
// for the whole dish.
type Nutrition struct {
	PerServing Macros  `json:"per_serving"`
	Total      *Macros `json:"total,omitempty"`
}

// Value implements driver.Valuer so Nutrition can be stored as JSONB.
func (n Nutrition) Value() (driver.Value, error) {
	return json.Marshal(n)
}

// Scan implements sql.Scanner for JSONB columns.
func (n *Nutrition) Scan(value any) error {
	return scanJSON(value, n)
}

// HealthNote is a single benefit or warning attached to a recipe.
type HealthNote struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// HealthNoteList is a list of health notes with tolerant decoding.
// Legacy rows stored these fields as a bare string, a single object, or an
// array; all three shapes normalize to a list when read. The write path
// never relies on this — admin input is validated strictly before save.
type HealthNoteList []HealthNote

// UnmarshalJSON accepts a string, a single object, or an array of either.
func (l *HealthNoteList) UnmarshalJSON(data []byte) error {
	data = trimSpaceJSON(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = HealthNoteList{{Title: s}}
		return nil
	case '{':
		var n HealthNote
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*l = HealthNoteList{n}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(HealthNoteList, 0, len(raw))
		for _, item := range raw {
			var sub HealthNoteList
			if err := sub.UnmarshalJSON(item); err != nil {
				return err
			}
			out = append(out, sub...)
		}
		*l = out
		return nil
	}
	return fmt.Errorf("health note: unsupported JSON shape %q", data[0])
}

// Value implements driver.Valuer. Always writes the canonical array shape.
func (l HealthNoteList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal([]HealthNote(l))
}

// Scan implements sql.Scanner.
func (l *HealthNoteList) Scan(value any) error {
	return scanJSON(value, l)
}

// IngredientList is an ordered ingredient list stored as JSONB.
type IngredientList []Ingredient

// Value implements driver.Valuer.
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal([]Ingredient(l))
}

// Scan implements sql.Scanner.
func (l *IngredientList) Scan(value any) error {
	return scanJSON(value, l)
}

// StringList is a string slice stored as JSONB (steps, dietary tags).
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal([]string(l))
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value any) error {
	return scanJSON(value, l)
}

// MealTimeList is a set of time-of-day slots stored as JSONB.
type MealTimeList []MealTime

// Value implements driver.Valuer.
func (l MealTimeList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal([]MealTime(l))
}

// Scan implements sql.Scanner.
func (l *MealTimeList) Scan(value any) error {
	return scanJSON(value, l)
}

// Recipe is the central domain record. Structured fields live in JSONB
// columns; everything else is a plain column on the recipes table.
type Recipe struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`

	Servings     int        `json:"servings"`
	PrepMinutes  int        `json:"prep_minutes"`
	CookMinutes  int        `json:"cook_minutes"`
	Difficulty   Difficulty `json:"difficulty"`
	PortionGrams *float64   `json:"portion_grams,omitempty"`
	HealthScore  *int       `json:"health_score,omitempty"` // 0-100
	Language     *string    `json:"language,omitempty"`     // "cs", "en", or null

	Ingredients    IngredientList `json:"ingredients"`
	Steps          StringList     `json:"steps"`
	Nutrition      *Nutrition     `json:"nutrition,omitempty"`
	HealthBenefits HealthNoteList `json:"health_benefits,omitempty"`
	Warnings       HealthNoteList `json:"warnings,omitempty"`

	DietaryTags StringList   `json:"dietary_tags,omitempty"`
	TimeOfDay   MealTimeList `json:"time_of_day,omitempty"`

	Visibility Visibility `json:"share_visibility"`

	PhotoPath        *string           `json:"photo_path,omitempty"`
	PhotoURL         *string           `json:"photo_url,omitempty"`
	PhotoThumbPath   *string           `json:"photo_thumb_path,omitempty"`
	PhotoWidth       *int              `json:"photo_width,omitempty"`
	PhotoHeight      *int              `json:"photo_height,omitempty"`
	PhotoSizeBytes   *int64            `json:"photo_size_bytes,omitempty"`
	ModerationStatus *ModerationStatus `json:"moderation_status,omitempty"`
	ModeratedAt      *time.Time        `json:"moderated_at,omitempty"`

	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsPubliclyVisible reports whether the recipe may appear on the public
// surface: not soft-deleted and shared as PUBLIC or UNLISTED.
func (r *Recipe) IsPubliclyVisible() bool {
	if r.DeletedAt != nil {
		return false
	}
	return r.Visibility == VisibilityPublic || r.Visibility == VisibilityUnlisted
}

// HasPhoto reports whether a photo URL is already attached.
func (r *Recipe) HasPhoto() bool {
	return r.PhotoURL != nil && *r.PhotoURL != ""
}

// Locale returns the public-site locale the recipe belongs under.
// English recipes live under "en"; everything else defaults to "cs".
func (r *Recipe) Locale() string {
	if r.Language != nil && *r.Language == "en" {
		return "en"
	}
	return "cs"
}

// scanJSON decodes a JSONB column value ([]byte or string) into dst.
func scanJSON(value, dst any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb scan: unsupported type %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// trimSpaceJSON strips leading/trailing JSON whitespace without allocating.
func trimSpaceJSON(data []byte) []byte {
	start, end := 0, len(data)
	for start < end && isJSONSpace(data[start]) {
		start++
	}
	for end > start && isJSONSpace(data[end-1]) {
		end--
	}
	return data[start:end]
}

func isJSONSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"nutra/internal/models"
	"nutra/internal/slug"
)

// Validation limits for recipe fields. The write path is strict: legacy
// shapes are only tolerated when reading old rows, never on save.
const (
	maxNameLen        = 200
	maxDescriptionLen = 10_000
	maxServings       = 100
	maxMinutes        = 10_080 // one week
	maxIngredients    = 100
	maxIngredientName = 200
	maxUnitLen        = 50
	maxSteps          = 100
	maxStepLen        = 2_000
	maxTags           = 50
	maxTagLen         = 80
	maxNoteTitleLen   = 200
	maxNoteDescLen    = 2_000
	maxPortionGrams   = 10_000
)

// recipeInput is the admin write payload. All fields are pointers so the
// same shape serves POST (full) and PATCH (partial); absent fields stay
// untouched on PATCH.
type recipeInput struct {
	Name           *string              `json:"name"`
	Description    *string              `json:"description"`
	Servings       *int                 `json:"servings"`
	PrepMinutes    *int                 `json:"prep_minutes"`
	CookMinutes    *int                 `json:"cook_minutes"`
	Difficulty     *string              `json:"difficulty"`
	PortionGrams   *float64             `json:"portion_grams"`
	HealthScore    *int                 `json:"health_score"`
	Language       *string              `json:"language"`
	Ingredients    *[]models.Ingredient `json:"ingredients"`
	Steps          *[]string            `json:"steps"`
	Nutrition      *models.Nutrition    `json:"nutrition"`
	HealthBenefits *[]models.HealthNote `json:"health_benefits"`
	Warnings       *[]models.HealthNote `json:"warnings"`
	DietaryTags    *[]string            `json:"dietary_tags"`
	TimeOfDay      *[]string            `json:"time_of_day"`
	Visibility     *string              `json:"share_visibility"`
}

// validateRecipe checks a write payload and returns every failure found.
// When partial is false (create), required fields must be present.
func validateRecipe(in *recipeInput, partial bool) []FieldError {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			add("name", "name is required")
		} else if utf8.RuneCountInString(name) > maxNameLen {
			add("name", fmt.Sprintf("name is too long (max %d characters)", maxNameLen))
		}
	} else if !partial {
		add("name", "name is required")
	}

	if in.Description != nil && utf8.RuneCountInString(*in.Description) > maxDescriptionLen {
		add("description", fmt.Sprintf("description is too long (max %d characters)", maxDescriptionLen))
	}

	if in.Servings != nil && (*in.Servings < 1 || *in.Servings > maxServings) {
		add("servings", fmt.Sprintf("servings must be between 1 and %d", maxServings))
	}
	if in.PrepMinutes != nil && (*in.PrepMinutes < 0 || *in.PrepMinutes > maxMinutes) {
		add("prep_minutes", "prep_minutes is out of range")
	}
	if in.CookMinutes != nil && (*in.CookMinutes < 0 || *in.CookMinutes > maxMinutes) {
		add("cook_minutes", "cook_minutes is out of range")
	}

	if in.Difficulty != nil && !models.ValidDifficulty(*in.Difficulty) {
		add("difficulty", "difficulty must be one of EASY, MEDIUM, HARD")
	}
	if in.Visibility != nil && !models.ValidVisibility(*in.Visibility) {
		add("share_visibility", "share_visibility must be one of PRIVATE, UNLISTED, PUBLIC")
	}
	if in.Language != nil {
		// Empty clears the language back to null.
		switch strings.ToLower(strings.TrimSpace(*in.Language)) {
		case "", "cs", "en":
		default:
			add("language", "language must be cs or en")
		}
	}

	if in.PortionGrams != nil && (*in.PortionGrams <= 0 || *in.PortionGrams > maxPortionGrams) {
		add("portion_grams", "portion_grams is out of range")
	}
	if in.HealthScore != nil && (*in.HealthScore < 0 || *in.HealthScore > 100) {
		add("health_score", "health_score must be between 0 and 100")
	}

	if in.Ingredients != nil {
		if !partial && len(*in.Ingredients) == 0 {
			add("ingredients", "at least one ingredient is required")
		}
		if len(*in.Ingredients) > maxIngredients {
			add("ingredients", fmt.Sprintf("too many ingredients (max %d)", maxIngredients))
		}
		for i, ing := range *in.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				add(fmt.Sprintf("ingredients[%d].name", i), "ingredient name is required")
			} else if utf8.RuneCountInString(ing.Name) > maxIngredientName {
				add(fmt.Sprintf("ingredients[%d].name", i), "ingredient name is too long")
			}
			if ing.Amount != nil && *ing.Amount < 0 {
				add(fmt.Sprintf("ingredients[%d].amount", i), "amount must not be negative")
			}
			if ing.Unit != nil && utf8.RuneCountInString(*ing.Unit) > maxUnitLen {
				add(fmt.Sprintf("ingredients[%d].unit", i), "unit is too long")
			}
		}
	} else if !partial {
		add("ingredients", "at least one ingredient is required")
	}

	if in.Steps != nil {
		if len(*in.Steps) > maxSteps {
			add("steps", fmt.Sprintf("too many steps (max %d)", maxSteps))
		}
		for i, step := range *in.Steps {
			if utf8.RuneCountInString(step) > maxStepLen {
				add(fmt.Sprintf("steps[%d]", i), "step is too long")
			}
		}
	}

	if in.Nutrition != nil {
		errs = append(errs, validateMacros("nutrition.per_serving", in.Nutrition.PerServing)...)
		if in.Nutrition.Total != nil {
			errs = append(errs, validateMacros("nutrition.total", *in.Nutrition.Total)...)
		}
	}

	errs = append(errs, validateNotes("health_benefits", in.HealthBenefits)...)
	errs = append(errs, validateNotes("warnings", in.Warnings)...)

	if in.DietaryTags != nil {
		if len(*in.DietaryTags) > maxTags {
			add("dietary_tags", fmt.Sprintf("too many tags (max %d)", maxTags))
		}
		for i, tag := range *in.DietaryTags {
			if strings.TrimSpace(tag) == "" || utf8.RuneCountInString(tag) > maxTagLen {
				add(fmt.Sprintf("dietary_tags[%d]", i), "tag must be 1-80 characters")
			}
		}
	}

	if in.TimeOfDay != nil {
		for i, slot := range *in.TimeOfDay {
			if !models.ValidMealTime(slot) {
				add(fmt.Sprintf("time_of_day[%d]", i), "time_of_day must be one of BREAKFAST, LUNCH, DINNER, SNACK")
			}
		}
	}

	return errs
}

// validateMacros rejects negative nutrient values.
func validateMacros(prefix string, m models.Macros) []FieldError {
	var errs []FieldError
	check := func(field string, v float64) {
		if v < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + "." + field,
				Message: field + " must not be negative",
			})
		}
	}
	check("calories", m.Calories)
	check("protein", m.Protein)
	check("carbs", m.Carbs)
	check("fat", m.Fat)
	if m.Fiber != nil {
		check("fiber", *m.Fiber)
	}
	if m.Sugar != nil {
		check("sugar", *m.Sugar)
	}
	return errs
}

func validateNotes(field string, notes *[]models.HealthNote) []FieldError {
	if notes == nil {
		return nil
	}
	var errs []FieldError
	for i, note := range *notes {
		if strings.TrimSpace(note.Title) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s[%d].title", field, i),
				Message: "title is required",
			})
		} else if utf8.RuneCountInString(note.Title) > maxNoteTitleLen {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s[%d].title", field, i),
				Message: "title is too long",
			})
		}
		if utf8.RuneCountInString(note.Description) > maxNoteDescLen {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s[%d].description", field, i),
				Message: "description is too long",
			})
		}
	}
	return errs
}

// applyRecipeInput copies present fields from a validated payload onto
// the recipe. The slug follows the name; clients never set it directly.
func applyRecipeInput(r *models.Recipe, in *recipeInput) {
	if in.Name != nil {
		r.Name = strings.TrimSpace(*in.Name)
		r.Slug = slug.Generate(r.Name)
	}
	if in.Description != nil {
		r.Description = strings.TrimSpace(*in.Description)
	}
	if in.Servings != nil {
		r.Servings = *in.Servings
	}
	if in.PrepMinutes != nil {
		r.PrepMinutes = *in.PrepMinutes
	}
	if in.CookMinutes != nil {
		r.CookMinutes = *in.CookMinutes
	}
	if in.Difficulty != nil {
		r.Difficulty = models.Difficulty(*in.Difficulty)
	}
	if in.PortionGrams != nil {
		r.PortionGrams = in.PortionGrams
	}
	if in.HealthScore != nil {
		r.HealthScore = in.HealthScore
	}
	if in.Language != nil {
		lang := strings.ToLower(strings.TrimSpace(*in.Language))
		if lang == "" {
			r.Language = nil
		} else {
			r.Language = &lang
		}
	}
	if in.Ingredients != nil {
		list := make(models.IngredientList, 0, len(*in.Ingredients))
		for _, ing := range *in.Ingredients {
			ing.Name = strings.TrimSpace(ing.Name)
			list = append(list, ing)
		}
		r.Ingredients = list
	}
	if in.Steps != nil {
		r.Steps = models.StringList(*in.Steps)
	}
	if in.Nutrition != nil {
		r.Nutrition = in.Nutrition
	}
	if in.HealthBenefits != nil {
		r.HealthBenefits = models.HealthNoteList(*in.HealthBenefits)
	}
	if in.Warnings != nil {
		r.Warnings = models.HealthNoteList(*in.Warnings)
	}
	if in.DietaryTags != nil {
		r.DietaryTags = models.StringList(*in.DietaryTags)
	}
	if in.TimeOfDay != nil {
		slots := make(models.MealTimeList, 0, len(*in.TimeOfDay))
		for _, s := range *in.TimeOfDay {
			slots = append(slots, models.MealTime(s))
		}
		r.TimeOfDay = slots
	}
	if in.Visibility != nil {
		r.Visibility = models.Visibility(*in.Visibility)
	}
}

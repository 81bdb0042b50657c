// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"testing"

	"nutra/internal/models"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func ingPtr(i []models.Ingredient) *[]models.Ingredient { return &i }

// minimalCreate is the smallest payload that passes a full (non-partial)
// validation.
func minimalCreate() *recipeInput {
	return &recipeInput{
		Name:        strPtr("Kulajda"),
		Ingredients: ingPtr([]models.Ingredient{{Name: "potatoes"}}),
	}
}

func fieldSet(errs []FieldError) map[string]bool {
	set := make(map[string]bool, len(errs))
	for _, e := range errs {
		set[e.Field] = true
	}
	return set
}

func TestValidateRecipeCreate(t *testing.T) {
	t.Run("minimal payload passes", func(t *testing.T) {
		if errs := validateRecipe(minimalCreate(), false); len(errs) != 0 {
			t.Fatalf("unexpected errors: %+v", errs)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		errs := validateRecipe(&recipeInput{}, false)
		set := fieldSet(errs)
		if !set["name"] || !set["ingredients"] {
			t.Fatalf("expected name and ingredients errors, got %+v", errs)
		}
	})

	t.Run("language domain", func(t *testing.T) {
		for _, lang := range []string{"cs", "en", " EN ", ""} {
			in := minimalCreate()
			in.Language = strPtr(lang)
			if errs := validateRecipe(in, false); len(errs) != 0 {
				t.Errorf("language %q rejected: %+v", lang, errs)
			}
		}
		in := minimalCreate()
		in.Language = strPtr("xx")
		if set := fieldSet(validateRecipe(in, false)); !set["language"] {
			t.Error("expected a language error for an unsupported code")
		}
	})

	t.Run("blank name is not a name", func(t *testing.T) {
		in := minimalCreate()
		in.Name = strPtr("   ")
		if set := fieldSet(validateRecipe(in, false)); !set["name"] {
			t.Error("expected a name error for whitespace-only name")
		}
	})

	t.Run("empty ingredient list rejected on create", func(t *testing.T) {
		in := minimalCreate()
		in.Ingredients = ingPtr([]models.Ingredient{})
		if set := fieldSet(validateRecipe(in, false)); !set["ingredients"] {
			t.Error("expected an ingredients error for empty list")
		}
	})
}

func TestValidateRecipePartial(t *testing.T) {
	t.Run("empty patch passes", func(t *testing.T) {
		if errs := validateRecipe(&recipeInput{}, true); len(errs) != 0 {
			t.Fatalf("unexpected errors: %+v", errs)
		}
	})

	t.Run("present fields still validated", func(t *testing.T) {
		in := &recipeInput{Servings: intPtr(0)}
		if set := fieldSet(validateRecipe(in, true)); !set["servings"] {
			t.Error("expected a servings error")
		}
	})

	t.Run("explicit blank name rejected", func(t *testing.T) {
		in := &recipeInput{Name: strPtr("")}
		if set := fieldSet(validateRecipe(in, true)); !set["name"] {
			t.Error("patching the name to empty must fail")
		}
	})
}

func TestValidateRecipeFieldLimits(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name    string
		mutate  func(*recipeInput)
		wantKey string
	}{
		{"long name", func(in *recipeInput) { in.Name = strPtr(strings.Repeat("x", maxNameLen+1)) }, "name"},
		{"long description", func(in *recipeInput) { in.Description = strPtr(strings.Repeat("x", maxDescriptionLen+1)) }, "description"},
		{"servings too high", func(in *recipeInput) { in.Servings = intPtr(maxServings + 1) }, "servings"},
		{"negative prep", func(in *recipeInput) { in.PrepMinutes = intPtr(-1) }, "prep_minutes"},
		{"cook over a week", func(in *recipeInput) { in.CookMinutes = intPtr(maxMinutes + 1) }, "cook_minutes"},
		{"bad difficulty", func(in *recipeInput) { in.Difficulty = strPtr("IMPOSSIBLE") }, "difficulty"},
		{"lowercase difficulty rejected", func(in *recipeInput) { in.Difficulty = strPtr("easy") }, "difficulty"},
		{"bad visibility", func(in *recipeInput) { in.Visibility = strPtr("SECRET") }, "share_visibility"},
		{"unknown language", func(in *recipeInput) { in.Language = strPtr("fr") }, "language"},
		{"zero portion grams", func(in *recipeInput) { in.PortionGrams = floatPtr(0) }, "portion_grams"},
		{"health score over 100", func(in *recipeInput) { in.HealthScore = intPtr(101) }, "health_score"},
		{
			"unnamed ingredient",
			func(in *recipeInput) { in.Ingredients = ingPtr([]models.Ingredient{{Name: "  "}}) },
			"ingredients[0].name",
		},
		{
			"negative ingredient amount",
			func(in *recipeInput) { in.Ingredients = ingPtr([]models.Ingredient{{Name: "salt", Amount: &neg}}) },
			"ingredients[0].amount",
		},
		{
			"long step",
			func(in *recipeInput) { s := []string{strings.Repeat("x", maxStepLen+1)}; in.Steps = &s },
			"steps[0]",
		},
		{
			"blank tag",
			func(in *recipeInput) { tags := []string{" "}; in.DietaryTags = &tags },
			"dietary_tags[0]",
		},
		{
			"bad meal time",
			func(in *recipeInput) { slots := []string{"BRUNCH"}; in.TimeOfDay = &slots },
			"time_of_day[0]",
		},
		{
			"untitled health benefit",
			func(in *recipeInput) { notes := []models.HealthNote{{Description: "d"}}; in.HealthBenefits = &notes },
			"health_benefits[0].title",
		},
		{
			"untitled warning",
			func(in *recipeInput) { notes := []models.HealthNote{{}}; in.Warnings = &notes },
			"warnings[0].title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := minimalCreate()
			tt.mutate(in)
			if set := fieldSet(validateRecipe(in, false)); !set[tt.wantKey] {
				t.Errorf("expected error on %q, got %+v", tt.wantKey, validateRecipe(in, false))
			}
		})
	}
}

func TestValidateRecipeNutrition(t *testing.T) {
	in := minimalCreate()
	fiber := -2.0
	in.Nutrition = &models.Nutrition{
		PerServing: models.Macros{Calories: -5, Protein: 10, Fiber: &fiber},
		Total:      &models.Macros{Fat: -1},
	}

	set := fieldSet(validateRecipe(in, false))
	for _, want := range []string{
		"nutrition.per_serving.calories",
		"nutrition.per_serving.fiber",
		"nutrition.total.fat",
	} {
		if !set[want] {
			t.Errorf("expected error on %q, got %v", want, set)
		}
	}
	if set["nutrition.per_serving.protein"] {
		t.Error("valid protein flagged as error")
	}
}

// TestValidateRecipeCollectsAll verifies validation reports every failure
// instead of stopping at the first.
func TestValidateRecipeCollectsAll(t *testing.T) {
	in := &recipeInput{
		Name:     strPtr(""),
		Servings: intPtr(-1),
	}
	errs := validateRecipe(in, true)
	if len(errs) < 2 {
		t.Fatalf("expected at least 2 errors, got %+v", errs)
	}
}

func TestApplyRecipeInput(t *testing.T) {
	t.Run("slug follows name", func(t *testing.T) {
		var r models.Recipe
		applyRecipeInput(&r, &recipeInput{Name: strPtr("  Grandma's Kulajda  ")})
		if r.Name != "Grandma's Kulajda" {
			t.Errorf("name = %q", r.Name)
		}
		if r.Slug != "grandmas-kulajda" {
			t.Errorf("slug = %q, want grandmas-kulajda", r.Slug)
		}
	})

	t.Run("absent fields untouched", func(t *testing.T) {
		r := models.Recipe{Name: "Original", Slug: "original", Servings: 4}
		applyRecipeInput(&r, &recipeInput{Description: strPtr("new text")})
		if r.Name != "Original" || r.Slug != "original" || r.Servings != 4 {
			t.Errorf("patch touched absent fields: %+v", r)
		}
		if r.Description != "new text" {
			t.Errorf("description = %q", r.Description)
		}
	})

	t.Run("language lowercased", func(t *testing.T) {
		var r models.Recipe
		applyRecipeInput(&r, &recipeInput{Language: strPtr(" EN ")})
		if r.Language == nil || *r.Language != "en" {
			t.Errorf("language = %v, want en", r.Language)
		}
	})

	t.Run("empty language clears to null", func(t *testing.T) {
		lang := "cs"
		r := models.Recipe{Language: &lang}
		applyRecipeInput(&r, &recipeInput{Language: strPtr("")})
		if r.Language != nil {
			t.Errorf("language = %q, want null", *r.Language)
		}
	})

	t.Run("ingredient names trimmed", func(t *testing.T) {
		var r models.Recipe
		applyRecipeInput(&r, &recipeInput{
			Ingredients: ingPtr([]models.Ingredient{{Name: "  dill  "}}),
		})
		if len(r.Ingredients) != 1 || r.Ingredients[0].Name != "dill" {
			t.Errorf("ingredients = %+v", r.Ingredients)
		}
	})
}

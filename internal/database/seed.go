package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial development data: a couple of
// public recipes and the premium feature configuration rows the admin
// console expects to exist. It is a no-op when data is already present.
func Seed(db *sql.DB) error {
	// Check if any recipes exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM recipes").Scan(&count); err != nil {
		return fmt.Errorf("seed check recipes: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO recipes (slug, name, description, servings, prep_minutes, cook_minutes,
			difficulty, language, ingredients, steps, nutrition, dietary_tags, time_of_day,
			share_visibility, health_score)
		VALUES
		('boiled-eggs', 'Boiled Eggs', 'The simplest breakfast there is.', 2, 2, 8,
			'EASY', 'en',
			'[{"name":"Egg","amount":4,"unit":"pcs"},{"name":"Salt"}]',
			'["Bring water to a boil.","Lower the eggs in and cook for 8 minutes.","Cool under running water and peel."]',
			'{"per_serving":{"calories":150,"protein":12,"carbs":1,"fat":10}}',
			'["vegetarian","gluten-free"]', '["BREAKFAST"]',
			'PUBLIC', 82),
		('kulajda', 'Kulajda', 'Jihočeská polévka s houbami, bramborami a koprem.', 4, 20, 35,
			'MEDIUM', 'cs',
			'[{"name":"Brambory","amount":500,"unit":"g"},{"name":"Houby","amount":200,"unit":"g"},{"name":"Kopr"},{"name":"Smetana","amount":250,"unit":"ml"}]',
			'["Uvařte brambory s houbami.","Zahustěte smetanou a dochuťte koprem.","Podávejte s vejcem."]',
			'{"per_serving":{"calories":320,"protein":9,"carbs":38,"fat":14}}',
			'["vegetarian"]', '["LUNCH","DINNER"]',
			'PUBLIC', 64)
	`)
	if err != nil {
		return fmt.Errorf("seed insert recipes: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO premium_config (feature_slug, display_name, free_monthly_limit, is_premium_only)
		VALUES
			('ai-image-generation', 'AI Image Generation', 3, FALSE),
			('meal-plans', 'Meal Plans', 1, FALSE),
			('nutrition-insights', 'Nutrition Insights', 0, TRUE)
		ON CONFLICT (feature_slug) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("seed insert premium config: %w", err)
	}

	slog.Info("database seeded with development recipes and premium config")
	return nil
}

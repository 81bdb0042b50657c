// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides the shared database helper for store tests.
// Tests are skipped when PostgreSQL is unreachable.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"nutra/internal/database"
	"nutra/internal/models"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "nutra")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "nutra")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// mustCreate inserts a recipe and registers row cleanup.
func mustCreate(t *testing.T, db *sql.DB, s *RecipeStore, r *models.Recipe) *models.Recipe {
	t.Helper()
	if r.Difficulty == "" {
		r.Difficulty = models.DifficultyEasy
	}
	if r.Servings == 0 {
		r.Servings = 2
	}
	if len(r.Ingredients) == 0 {
		r.Ingredients = models.IngredientList{{Name: "water"}}
	}
	created, err := s.Create(r)
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM recipes WHERE id = $1", created.ID)
	})
	return created
}

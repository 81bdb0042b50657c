// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// WaitlistStore records marketing waitlist signups.
type WaitlistStore struct {
	db *sql.DB
}

// NewWaitlistStore creates a new WaitlistStore with the given database connection.
func NewWaitlistStore(db *sql.DB) *WaitlistStore {
	return &WaitlistStore{db: db}
}

// Add records a signup. Emails are stored lowercased; re-signing up with
// a known email is a silent success so the form never leaks membership.
func (s *WaitlistStore) Add(email, locale string) error {
	_, err := s.db.Exec(`
		INSERT INTO marketing_waitlist (email, locale)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, strings.ToLower(strings.TrimSpace(email)), locale)
	if err != nil {
		return fmt.Errorf("add waitlist entry: %w", err)
	}
	return nil
}

// Count returns the number of waitlist signups.
func (s *WaitlistStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM marketing_waitlist`).Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("count waitlist: %w", err)
	}
	return n, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and the canonical
// {id}-{slug} route form used for recipe URLs.
package slug

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// uuidLen is the length of a canonical UUID string (8-4-4-4-12).
const uuidLen = 36

// Canonical returns the authoritative route form for a recipe:
// "{id}-{slug}", or just "{id}" when the human slug is empty. All other
// forms redirect to this one.
func Canonical(id uuid.UUID, humanSlug string) string {
	if humanSlug == "" {
		return id.String()
	}
	return id.String() + "-" + humanSlug
}

// SplitIDPrefix checks whether a route slug starts with a UUID. Newer URLs
// embed the recipe ID as a prefix ("{uuid}-my-dish"); legacy URLs carry the
// bare human slug. Returns the parsed ID, the remainder after the prefix
// (without the joining hyphen), and whether a prefix was found.
func SplitIDPrefix(routeSlug string) (uuid.UUID, string, bool) {
	if len(routeSlug) < uuidLen {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(routeSlug[:uuidLen])
	if err != nil {
		return uuid.Nil, "", false
	}
	rest := strings.TrimPrefix(routeSlug[uuidLen:], "-")
	return id, rest, true
}

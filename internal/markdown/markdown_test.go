// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains string
	}{
		{"paragraph", "A hearty Czech soup.", "<p>A hearty Czech soup.</p>"},
		{"emphasis", "Serve *warm* with bread.", "<em>warm</em>"},
		{"heading gets an id", "## Ingredients", `<h2 id="ingredients">Ingredients</h2>`},
		{"gfm table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
		{"autolink", "See https://example.com for more.", `<a href="https://example.com"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("output %q missing %q", got, tt.contains)
			}
		})
	}
}

// Raw HTML in a description must not pass through to the public page.
func TestToHTMLEscapesRawHTML(t *testing.T) {
	got, err := ToHTML(`Try it <script>alert("x")</script> today.`)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML leaked through: %q", got)
	}
}

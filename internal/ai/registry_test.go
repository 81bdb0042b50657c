// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"testing"
)

// fakeImageProvider implements ImageProvider for registry tests.
type fakeImageProvider struct {
	name  string
	data  []byte
	ctype string
	err   error
}

func (f *fakeImageProvider) Name() string { return f.name }
func (f *fakeImageProvider) GenerateImage(context.Context, string) ([]byte, string, error) {
	return f.data, f.ctype, f.err
}

// fakeFoodModerator implements FoodModerator for registry tests.
type fakeFoodModerator struct {
	check *FoodCheck
	err   error
	calls int
}

func (f *fakeFoodModerator) CheckFood(context.Context, string) (*FoodCheck, error) {
	f.calls++
	return f.check, f.err
}

func TestRegistrySkipsProvidersWithoutKeys(t *testing.T) {
	r := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: ""},
		"gemini": {APIKey: ""},
	})
	if got := r.Available(); len(got) != 0 {
		t.Errorf("available = %v, want none", got)
	}
	if _, err := r.Active(); err == nil {
		t.Error("expected an error for an unconfigured active provider")
	}
	if _, _, err := r.GenerateImage(context.Background(), "soup"); err == nil {
		t.Error("expected GenerateImage to fail without a provider")
	}
}

func TestRegistryActiveProvider(t *testing.T) {
	r := NewRegistry("test", map[string]ProviderConfig{})
	r.Register("test", &fakeImageProvider{name: "test", data: []byte("png"), ctype: "image/png"})

	if got := r.ActiveName(); got != "test" {
		t.Errorf("active name = %q", got)
	}
	data, ctype, err := r.GenerateImage(context.Background(), "a bowl of kulajda")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(data) != "png" || ctype != "image/png" {
		t.Errorf("got %q %q", data, ctype)
	}
}

func TestRegistryCheckFood(t *testing.T) {
	r := NewRegistry("test", map[string]ProviderConfig{})

	if _, err := r.CheckFood(context.Background(), "https://x/img.jpg"); err == nil {
		t.Error("expected an error when no moderator is configured")
	}

	mod := &fakeFoodModerator{check: &FoodCheck{IsFood: true, Confidence: 0.9}}
	r.SetModerator(mod)
	check, err := r.CheckFood(context.Background(), "https://x/img.jpg")
	if err != nil {
		t.Fatalf("check food: %v", err)
	}
	if !check.IsFood || mod.calls != 1 {
		t.Errorf("check = %+v, calls = %d", check, mod.calls)
	}
}

func TestFallbackModerator(t *testing.T) {
	t.Run("primary succeeds", func(t *testing.T) {
		primary := &fakeFoodModerator{check: &FoodCheck{IsFood: true}}
		secondary := &fakeFoodModerator{check: &FoodCheck{IsFood: false}}
		m := newFallbackModerator(primary, secondary)

		check, err := m.CheckFood(context.Background(), "u")
		if err != nil || !check.IsFood {
			t.Fatalf("check = %+v, err = %v", check, err)
		}
		if secondary.calls != 0 {
			t.Errorf("secondary called %d times despite primary success", secondary.calls)
		}
	})

	t.Run("primary fails", func(t *testing.T) {
		primary := &fakeFoodModerator{err: errors.New("quota exceeded")}
		secondary := &fakeFoodModerator{check: &FoodCheck{IsFood: true}}
		m := newFallbackModerator(primary, secondary)

		check, err := m.CheckFood(context.Background(), "u")
		if err != nil || !check.IsFood {
			t.Fatalf("check = %+v, err = %v", check, err)
		}
	})

	t.Run("both fail", func(t *testing.T) {
		m := newFallbackModerator(
			&fakeFoodModerator{err: errors.New("down")},
			&fakeFoodModerator{err: errors.New("also down")},
		)
		if _, err := m.CheckFood(context.Background(), "u"); err == nil {
			t.Fatal("expected an error when both moderators fail")
		}
	})
}

func TestParseFoodVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
		wantErr bool
	}{
		{"plain json", `{"is_food": true, "confidence": 0.95, "reason": "a plated dish"}`, true, false},
		{"fenced json", "```json\n{\"is_food\": false, \"confidence\": 0.8, \"reason\": \"a bicycle\"}\n```", false, false},
		{"bare fence", "```\n{\"is_food\": true}\n```", true, false},
		{"prose", "Sure! This looks like food to me.", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := parseFoodVerdict(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", check)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if check.IsFood != tt.want {
				t.Errorf("is_food = %v, want %v", check.IsFood, tt.want)
			}
		})
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface for the external AI functions
// the admin console depends on: recipe image generation and food-photo
// moderation. Each provider handles its own HTTP communication, and the
// Registry selects the active one by name.
package ai

import (
	"context"
	"fmt"
	"sync"
)

// ImageProvider generates a dish image from a text prompt.
type ImageProvider interface {
	// GenerateImage creates an image from a text prompt. Returns the raw
	// image bytes and the MIME content type (e.g., "image/png").
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)

	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Registry manages available image providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ImageProvider
	active    string
	moderator FoodModerator // may be nil if no moderation backend is available
}

// NewRegistry creates a registry and initialises providers for every
// config that has a non-empty API key. Providers without keys are
// silently skipped. The food moderator prefers OpenAI (vision check on
// the photo URL) with Gemini as fallback when both are configured.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]ImageProvider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "gemini":
			r.providers[name] = newGemini(cfg)
		}
	}

	openaiCfg, hasOpenAI := configs["openai"]
	hasOpenAI = hasOpenAI && openaiCfg.APIKey != ""
	geminiCfg, hasGemini := configs["gemini"]
	hasGemini = hasGemini && geminiCfg.APIKey != ""

	if hasOpenAI && hasGemini {
		r.moderator = newFallbackModerator(
			newOpenAIFoodModerator(openaiCfg.APIKey, openaiCfg.BaseURL),
			newGeminiFoodModerator(geminiCfg.APIKey, geminiCfg.Model, geminiCfg.BaseURL),
		)
	} else if hasOpenAI {
		r.moderator = newOpenAIFoodModerator(openaiCfg.APIKey, openaiCfg.BaseURL)
	} else if hasGemini {
		r.moderator = newGeminiFoodModerator(geminiCfg.APIKey, geminiCfg.Model, geminiCfg.BaseURL)
	}

	return r
}

// GenerateImage calls the active provider's image generation.
func (r *Registry) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	p, err := r.Active()
	if err != nil {
		return nil, "", err
	}
	return p.GenerateImage(ctx, prompt)
}

// Active returns the currently active provider.
func (r *Registry) Active() (ImageProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the names of all providers that have valid API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Register adds or replaces a provider in the registry. Used by tests to
// inject fakes.
func (r *Registry) Register(name string, p ImageProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
	if r.active == "" {
		r.active = name
	}
}

// SetModerator replaces the food moderator. Used by tests.
func (r *Registry) SetModerator(m FoodModerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderator = m
}

// CheckFood runs a food-photo check on the given public image URL.
// Returns an error when no moderation backend is configured — the photo
// pipeline maps any error to the sentinel "error" status, so moderation
// stays advisory and never blocks an upload.
func (r *Registry) CheckFood(ctx context.Context, imageURL string) (*FoodCheck, error) {
	r.mu.RLock()
	m := r.moderator
	r.mu.RUnlock()

	if m == nil {
		return nil, fmt.Errorf("ai: no food moderator configured")
	}
	return m.CheckFood(ctx, imageURL)
}

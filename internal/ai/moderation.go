// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// FoodCheck is the outcome of a food-photo moderation call.
type FoodCheck struct {
	IsFood     bool    // true if the photo shows food or a dish
	Confidence float64 // 0-1, provider estimate when available
	Detail     string  // short provider rationale, may be empty
}

// FoodModerator classifies an uploaded photo as food / not-food.
// The check is advisory: callers persist the outcome but never fail an
// upload because of it.
type FoodModerator interface {
	// CheckFood evaluates the image at the given public URL.
	CheckFood(ctx context.Context, imageURL string) (*FoodCheck, error)
}

// foodCheckPrompt asks for a strict JSON verdict so the response can be
// parsed without provider-specific handling.
const foodCheckPrompt = `You are a photo moderation service for a recipe website.
Look at the image and decide whether it primarily shows food, a dish, a meal, or ingredients.
Respond with ONLY a JSON object, no markdown: {"is_food": true|false, "confidence": 0.0-1.0, "reason": "short reason"}`

// --- OpenAI vision moderator (preferred) ---

// openAIFoodModerator uses the OpenAI chat completions API with an image
// URL part (vision input).
type openAIFoodModerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// newOpenAIFoodModerator creates the OpenAI-backed food moderator.
func newOpenAIFoodModerator(apiKey, baseURL string) *openAIFoodModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIFoodModerator{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (m *openAIFoodModerator) CheckFood(ctx context.Context, imageURL string) (*FoodCheck, error) {
	body := map[string]any{
		"model": "gpt-4o-mini",
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": foodCheckPrompt},
					{"type": "image_url", "image_url": map[string]string{"url": imageURL}},
				},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("food check marshal: %w", err)
	}

	url := m.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("food check request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("food check http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("food check read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("food check API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("food check unmarshal: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("food check: no choices returned")
	}

	return parseFoodVerdict(result.Choices[0].Message.Content)
}

// --- Gemini vision moderator (fallback) ---

// geminiFoodModerator downloads the photo and sends it to Gemini as
// inline data, since the Gemini API does not fetch remote URLs itself.
type geminiFoodModerator struct {
	provider *geminiProvider
	client   *http.Client
}

// newGeminiFoodModerator creates the Gemini-backed food moderator.
func newGeminiFoodModerator(apiKey, model, baseURL string) *geminiFoodModerator {
	return &geminiFoodModerator{
		provider: newGemini(ProviderConfig{APIKey: apiKey, Model: model, BaseURL: baseURL}),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (m *geminiFoodModerator) CheckFood(ctx context.Context, imageURL string) (*FoodCheck, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("food check fetch request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("food check fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("food check fetch failed (status %d)", resp.StatusCode)
	}

	// Photos are capped at 10 MiB at upload time; read a little past that
	// so oversized responses fail loudly instead of truncating silently.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 11<<20))
	if err != nil {
		return nil, fmt.Errorf("food check fetch body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: foodCheckPrompt},
				{InlineData: &geminiInlineData{
					MimeType: contentType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}

	result, err := m.provider.generateContent(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("food check: no candidates returned")
	}

	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			return parseFoodVerdict(part.Text)
		}
	}
	return nil, fmt.Errorf("food check: no text in response")
}

// --- Fallback composition ---

// fallbackModerator tries the primary moderator and falls back to the
// secondary on any error. Used when both OpenAI and Gemini keys are
// configured.
type fallbackModerator struct {
	primary   FoodModerator
	secondary FoodModerator
}

func newFallbackModerator(primary, secondary FoodModerator) *fallbackModerator {
	return &fallbackModerator{primary: primary, secondary: secondary}
}

func (m *fallbackModerator) CheckFood(ctx context.Context, imageURL string) (*FoodCheck, error) {
	check, err := m.primary.CheckFood(ctx, imageURL)
	if err == nil {
		return check, nil
	}
	slog.Warn("primary food moderator failed, trying fallback", "error", err)
	return m.secondary.CheckFood(ctx, imageURL)
}

// parseFoodVerdict extracts the JSON verdict from a model response,
// tolerating markdown code fences around the object.
func parseFoodVerdict(content string) (*FoodCheck, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var verdict struct {
		IsFood     bool    `json:"is_food"`
		Confidence float64 `json:"confidence"`
		Reason     string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return nil, fmt.Errorf("food check parse verdict: %w", err)
	}

	return &FoodCheck{
		IsFood:     verdict.IsFood,
		Confidence: verdict.Confidence,
		Detail:     verdict.Reason,
	}, nil
}

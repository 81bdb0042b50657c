// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestServer responds to every request with the given status and body.
func newTestServer(t *testing.T, statusCode int, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// openAIChatBody builds a chat completions response with a single choice
// containing the given text.
func openAIChatBody(text string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": text}},
		},
	})
	return b
}

func TestOpenAIFoodModerator_Success(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write(openAIChatBody(`{"is_food": true, "confidence": 0.92, "reason": "a plated soup"}`))
	}))
	t.Cleanup(srv.Close)

	m := newOpenAIFoodModerator("test-key", srv.URL)
	check, err := m.CheckFood(context.Background(), "https://cdn.example.com/soup.jpg")
	if err != nil {
		t.Fatalf("CheckFood: %v", err)
	}

	if !check.IsFood {
		t.Error("is_food = false, want true")
	}
	if check.Confidence != 0.92 {
		t.Errorf("confidence = %v", check.Confidence)
	}
	if check.Detail != "a plated soup" {
		t.Errorf("detail = %q", check.Detail)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.Contains(string(gotBody), "https://cdn.example.com/soup.jpg") {
		t.Error("request body missing the image URL")
	}
}

func TestOpenAIFoodModerator_FencedVerdict(t *testing.T) {
	srv := newTestServer(t, http.StatusOK,
		openAIChatBody("```json\n{\"is_food\": false, \"confidence\": 0.7, \"reason\": \"a laptop\"}\n```"))

	m := newOpenAIFoodModerator("test-key", srv.URL)
	check, err := m.CheckFood(context.Background(), "https://cdn.example.com/laptop.jpg")
	if err != nil {
		t.Fatalf("CheckFood: %v", err)
	}
	if check.IsFood {
		t.Error("is_food = true, want false")
	}
}

func TestOpenAIFoodModerator_APIError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, []byte(`{"error": "rate limited"}`))

	m := newOpenAIFoodModerator("test-key", srv.URL)
	_, err := m.CheckFood(context.Background(), "https://cdn.example.com/soup.jpg")
	if err == nil {
		t.Fatal("expected an error on a non-200 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestOpenAIFoodModerator_NoChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"choices": []}`))

	m := newOpenAIFoodModerator("test-key", srv.URL)
	if _, err := m.CheckFood(context.Background(), "https://cdn.example.com/soup.jpg"); err == nil {
		t.Fatal("expected an error when no choices are returned")
	}
}

// TestGeminiFoodModerator_Success exercises the full Gemini path: the
// moderator downloads the photo and sends it inline.
func TestGeminiFoodModerator_Success(t *testing.T) {
	photoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	t.Cleanup(photoSrv.Close)

	var sawInlineData bool
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sawInlineData = strings.Contains(string(body), `"inlineData"`)
		resp := geminiResponse{
			Candidates: []geminiCandidate{
				{Content: geminiContent{Parts: []geminiPart{
					{Text: `{"is_food": true, "confidence": 0.85, "reason": "a curry"}`},
				}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(apiSrv.Close)

	m := newGeminiFoodModerator("test-key", "gemini-2.0-flash", apiSrv.URL)
	check, err := m.CheckFood(context.Background(), photoSrv.URL+"/photo.jpg")
	if err != nil {
		t.Fatalf("CheckFood: %v", err)
	}
	if !check.IsFood || check.Detail != "a curry" {
		t.Errorf("check = %+v", check)
	}
	if !sawInlineData {
		t.Error("request to Gemini missing the inline photo data")
	}
}

func TestGeminiFoodModerator_PhotoFetchFails(t *testing.T) {
	photoSrv := newTestServer(t, http.StatusNotFound, nil)

	m := newGeminiFoodModerator("test-key", "gemini-2.0-flash", "http://unused.invalid")
	if _, err := m.CheckFood(context.Background(), photoSrv.URL+"/gone.jpg"); err == nil {
		t.Fatal("expected an error when the photo cannot be fetched")
	}
}

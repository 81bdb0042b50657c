package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// openAIProvider implements ImageProvider using the OpenAI images API
// (POST /v1/images/generations).
type openAIProvider struct {
	config ProviderConfig
	client *http.Client
}

// newOpenAI creates a new OpenAI provider.
func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &openAIProvider{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *openAIProvider) Name() string { return "openai" }

// GenerateImage requests a single 1024x1024 image and returns the decoded
// PNG bytes.
func (p *openAIProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	body := openAIImageRequest{
		Model:  p.config.Model,
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("openai image marshal: %w", err)
	}

	url := p.config.BaseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("openai image request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("openai image http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("openai image read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("openai image API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result openAIImageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, "", fmt.Errorf("openai image unmarshal: %w", err)
	}

	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, "", fmt.Errorf("openai image: no image data returned")
	}

	imgBytes, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, "", fmt.Errorf("openai image decode base64: %w", err)
	}

	return imgBytes, "image/png", nil
}

// --- OpenAI API types ---

type openAIImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

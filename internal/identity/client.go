// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity talks to the external hosted identity service that owns
// all credentials. The application never stores passwords or verifies
// tokens locally — sign-in exchanges credentials for an opaque access
// token, and every privileged request sends that token back to the
// service for validation.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// User is the identity record returned by the auth service.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Client is an HTTP client for the identity service.
type Client struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewClient creates an identity service client. serviceKey is the
// project-level API key sent alongside every request.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    trimSlash(baseURL),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SignInWithPassword exchanges email/password credentials for an access
// token and the authenticated user.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (string, *User, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", nil, fmt.Errorf("identity marshal: %w", err)
	}

	url := c.baseURL + "/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("identity http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("identity read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("identity sign-in failed (status %d)", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", nil, fmt.Errorf("identity unmarshal: %w", err)
	}
	if result.AccessToken == "" {
		return "", nil, fmt.Errorf("identity: empty access token")
	}

	return result.AccessToken, &result.User, nil
}

// UserFromToken validates an access token with the identity service and
// returns the user it belongs to. Any failure — expired token, revoked
// token, transport error — comes back as an error; callers treat all of
// them as "not authenticated".
func (c *Client) UserFromToken(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("identity request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("identity read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity token rejected (status %d)", resp.StatusCode)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("identity unmarshal: %w", err)
	}
	return &user, nil
}

// SignOut revokes an access token. Best-effort: failures are returned but
// callers may ignore them — the local session is destroyed regardless.
func (c *Client) SignOut(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("identity request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity http: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("identity sign-out failed (status %d)", resp.StatusCode)
	}
	return nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// Package auth integrates the external identity provider: a thin HTTP
// client for the magic-link flow and a middleware that verifies the
// provider's access tokens locally.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"core/internal/config"
)

// ErrUnauthorized is returned when the provider rejects credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Session is the token pair the provider issues after verification.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// User is the provider's view of an authenticated user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client talks to the identity provider's REST API.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a provider client from auth configuration.
func NewClient(cfg config.AuthConfig) *Client {
	return &Client{
		baseURL:    cfg.ProviderURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// SendMagicLink asks the provider to mail a sign-in link.
func (c *Client) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	body := map[string]interface{}{
		"email":       email,
		"create_user": true,
	}
	if redirectTo != "" {
		body["options"] = map[string]string{"email_redirect_to": redirectTo}
	}

	return c.post(ctx, "/auth/v1/otp", body, nil)
}

// VerifyToken exchanges a magic-link token for a session.
func (c *Client) VerifyToken(ctx context.Context, token, tokenType string) (*Session, error) {
	if tokenType == "" {
		tokenType = "magiclink"
	}

	var session Session
	err := c.post(ctx, "/auth/v1/verify", map[string]string{
		"token": token,
		"type":  tokenType,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Refresh exchanges a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", map[string]string{
		"refresh_token": refreshToken,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetUser fetches the user behind an access token. If the token has
// expired and a refresh token is at hand, the session is refreshed
// once and the lookup retried; the refreshed session is returned
// alongside the user so the caller can persist it.
func (c *Client) GetUser(ctx context.Context, session Session) (*User, *Session, error) {
	user, err := c.getUser(ctx, session.AccessToken)
	if err == nil {
		return user, nil, nil
	}
	if !errors.Is(err, ErrUnauthorized) || session.RefreshToken == "" {
		return nil, nil, err
	}

	refreshed, err := c.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err = c.getUser(ctx, refreshed.AccessToken)
	if err != nil {
		return nil, nil, err
	}
	return user, refreshed, nil
}

// Logout revokes the session behind an access token.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to build logout request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()

	return c.checkStatus(resp)
}

func (c *Client) getUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, bearer string) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, detail)
}

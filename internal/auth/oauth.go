// Package auth owns the OAuth2 session lifecycle: login, refresh,
// expiry checks and logout.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/api"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/logger"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
)

// Grant types accepted by the token endpoint.
const (
	grantPassword     = "password"
	grantRefreshToken = "refresh_token"
)

// TokenResponse represents a successful token exchange.
type TokenResponse struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// tokenRequest is the JSON body sent to the token endpoint.
type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// exchangeToken performs one grant exchange against the token endpoint.
func exchangeToken(ctx context.Context, client *http.Client, authURL string, payload tokenRequest) (*TokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, api.ConnectivityError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &api.Error{
			Kind:    api.KindInvalidCredentials,
			Status:  resp.StatusCode,
			Message: "invalid credentials",
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, api.StatusError(resp.StatusCode, string(respBody))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return &tokenResp, nil
}

// profileResponse mirrors the /me payload: the user record carries a
// nested profile whose permissions are flattened for authorization checks.
type profileResponse struct {
	Data struct {
		User struct {
			ID        int    `json:"id"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			ProfileID int    `json:"profile_id"`
			Profile   struct {
				Name        string `json:"name"`
				Permissions []struct {
					Name string `json:"name"`
				} `json:"permissions"`
			} `json:"profile"`
		} `json:"user"`
	} `json:"data"`
}

// fetchProfile retrieves the authenticated user's identity and permissions.
func fetchProfile(ctx context.Context, client *http.Client, baseURL, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, api.ConnectivityError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, api.StatusError(resp.StatusCode, string(respBody))
	}

	var profile profileResponse
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}

	raw := profile.Data.User
	permissions := make([]string, 0, len(raw.Profile.Permissions))
	for _, p := range raw.Profile.Permissions {
		permissions = append(permissions, p.Name)
	}

	return &models.User{
		ID:          raw.ID,
		Name:        raw.Name,
		Email:       raw.Email,
		ProfileID:   raw.ProfileID,
		ProfileName: raw.Profile.Name,
		Permissions: permissions,
	}, nil
}

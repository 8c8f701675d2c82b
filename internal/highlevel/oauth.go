package highlevel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
)

// ExchangeCode trades an authorization code for an access/refresh token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	if c == nil {
		return Token{}, apperr.Upstream("CRM integration is not configured")
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	return c.tokenRequest(ctx, form)
}

// RefreshToken trades a refresh token for a fresh token pair. The platform
// rotates the refresh token on every use; callers must persist the returned
// pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (Token, error) {
	if c == nil {
		return Token{}, apperr.Upstream("CRM integration is not configured")
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	return c.tokenRequest(ctx, form)
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (Token, error) {
	if c == nil {
		return Token{}, apperr.Upstream("CRM integration is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Token{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("read token response: %w", err)
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return Token{}, fmt.Errorf("decode token response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || token.Error != "" {
		c.log.Error("token grant rejected", "status", resp.StatusCode, "error", token.Error)
		return Token{}, apperr.Upstream("token grant rejected")
	}

	if token.ExpiresIn <= 0 {
		token.ExpiresIn = defaultTokenTTLSeconds
	}
	return token, nil
}

// ExpiresAt converts the token's TTL into an absolute expiry from now.
func (t Token) ExpiresAt() time.Time {
	return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
}

// InstalledLocations lists the sub-accounts the app is installed on for a
// company.
func (c *Client) InstalledLocations(ctx context.Context, accessToken, companyID string) ([]Location, error) {
	if c == nil {
		return nil, apperr.Upstream("CRM integration is not configured")
	}

	query := url.Values{}
	query.Set("companyId", companyID)
	query.Set("appId", c.appID)
	query.Set("limit", "1000")
	query.Set("isInstalled", "true")

	var out locationsResponse
	if err := c.get(ctx, accessToken, "/oauth/installedLocations", query, &out); err != nil {
		return nil, err
	}
	return out.Locations, nil
}

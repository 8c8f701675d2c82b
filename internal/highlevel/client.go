// Package highlevel is the REST client for the HighLevel CRM platform
// (services.leadconnectorhq.com): OAuth grants and the resource endpoints
// lead ingestion reads from.
package highlevel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
	"github.com/summitwebteam/lead-fire-cursor/platform/config"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

// Client talks to the CRM platform API. All requests share a client-side
// rate limiter because the platform throttles per app, not per endpoint.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURI  string
	appID        string
	http         *http.Client
	limiter      *rate.Limiter
	log          *logger.Logger
}

// NewClient creates a CRM client. Returns nil when the integration is not
// configured; a nil client is safe to pass around and methods on it fail
// with an upstream error.
func NewClient(cfg config.HighLevelConfig, log *logger.Logger) *Client {
	if !cfg.IsHighLevelEnabled() {
		return nil
	}

	limit := cfg.GetHighLevelRateLimit()
	if limit <= 0 {
		limit = 10
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.GetHighLevelBaseURL(), "/"),
		clientID:     cfg.GetHighLevelClientID(),
		clientSecret: cfg.GetHighLevelClientSecret(),
		redirectURI:  cfg.GetHighLevelRedirectURI(),
		appID:        cfg.GetHighLevelAppID(),
		http:         &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(limit), int(limit)),
		log:          log,
	}
}

// Forms lists the location's lead-capture forms.
func (c *Client) Forms(ctx context.Context, accessToken, locationID string) ([]Form, error) {
	query := url.Values{}
	query.Set("locationId", locationID)

	var out formsResponse
	if err := c.get(ctx, accessToken, "/forms/", query, &out); err != nil {
		return nil, err
	}
	return out.Forms, nil
}

// PhoneNumbers lists the location's tracked inbound numbers.
func (c *Client) PhoneNumbers(ctx context.Context, accessToken, locationID string) ([]PhoneNumber, error) {
	query := url.Values{}
	query.Set("locationId", locationID)

	var out phoneNumbersResponse
	if err := c.get(ctx, accessToken, "/phone-system/numbers", query, &out); err != nil {
		return nil, err
	}
	return out.PhoneNumbers, nil
}

// Surveys lists the location's survey funnels.
func (c *Client) Surveys(ctx context.Context, accessToken, locationID string) ([]Survey, error) {
	query := url.Values{}
	query.Set("locationId", locationID)

	var out surveysResponse
	if err := c.get(ctx, accessToken, "/surveys/", query, &out); err != nil {
		return nil, err
	}
	return out.Surveys, nil
}

// Contacts fetches one page of the location's contacts. Pages are 1-based.
func (c *Client) Contacts(ctx context.Context, accessToken, locationID string, page, limit int) ([]Contact, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}

	query := url.Values{}
	query.Set("locationId", locationID)
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var out contactsResponse
	if err := c.get(ctx, accessToken, "/contacts/", query, &out); err != nil {
		return nil, 0, err
	}
	return out.Contacts, out.Total, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, query url.Values, out interface{}) error {
	if c == nil {
		return apperr.Upstream("CRM integration is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm request %s failed: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return apperr.Unauthorized("CRM token rejected")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		c.log.Error("crm request failed", "path", path, "status", resp.StatusCode, "body", strings.TrimSpace(string(data)))
		return apperr.Upstream(fmt.Sprintf("CRM returned %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode crm response %s: %w", path, err)
	}
	return nil
}

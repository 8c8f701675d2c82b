package highlevel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

type testConfig struct {
	baseURL string
}

func (c testConfig) GetHighLevelBaseURL() string      { return c.baseURL }
func (c testConfig) GetHighLevelClientID() string     { return "client-id" }
func (c testConfig) GetHighLevelClientSecret() string { return "client-secret" }
func (c testConfig) GetHighLevelRedirectURI() string  { return "https://app.example.com/auth/callback" }
func (c testConfig) GetHighLevelAppID() string        { return "app-id" }
func (c testConfig) GetHighLevelRateLimit() float64   { return 100 }
func (c testConfig) IsHighLevelEnabled() bool         { return true }

func newTestClient(baseURL string) *Client {
	return NewClient(testConfig{baseURL: baseURL}, logger.New("test"))
}

func TestExchangeCodeSendsFormGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %s", got)
		}
		if got := r.PostForm.Get("code"); got != "auth-code" {
			t.Errorf("code = %s", got)
		}
		if got := r.PostForm.Get("redirect_uri"); got == "" {
			t.Error("redirect_uri missing")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":86400,"companyId":"co_1"}`))
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL).ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if token.AccessToken != "at" || token.RefreshToken != "rt" || token.CompanyID != "co_1" {
		t.Errorf("token = %+v", token)
	}
	if token.ExpiresIn != 86400 {
		t.Errorf("ExpiresIn = %d", token.ExpiresIn)
	}
}

func TestTokenDefaultsToSevenDayTTL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt"}`))
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL).RefreshToken(context.Background(), "rt-old")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if token.ExpiresIn != 604800 {
		t.Errorf("ExpiresIn = %d, want 604800", token.ExpiresIn)
	}

	expiry := token.ExpiresAt()
	want := time.Now().Add(7 * 24 * time.Hour)
	if diff := expiry.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("ExpiresAt = %v, want about %v", expiry, want)
	}
}

func TestTokenGrantRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).RefreshToken(context.Background(), "expired")
	if apperr.GetKind(err) != apperr.KindUpstream {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestContactsPaginatedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contacts/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer at" {
			t.Errorf("authorization = %s", got)
		}
		if got := r.Header.Get("Version"); got != "2021-07-28" {
			t.Errorf("version header = %s", got)
		}
		q := r.URL.Query()
		if q.Get("locationId") != "loc_1" || q.Get("page") != "2" || q.Get("limit") != "50" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`{"contacts":[{"id":"ct_1","firstName":"Ada","phone":"+12025550123"}],"total":51}`))
	}))
	defer srv.Close()

	contacts, total, err := newTestClient(srv.URL).Contacts(context.Background(), "at", "loc_1", 2, 50)
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if total != 51 || len(contacts) != 1 || contacts[0].ID != "ct_1" {
		t.Errorf("contacts = %+v total = %d", contacts, total)
	}
}

func TestUnauthorizedMapsToUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Forms(context.Background(), "stale", "loc_1")
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestNilClientFailsUpstream(t *testing.T) {
	var c *Client
	ctx := context.Background()

	calls := map[string]func() error{
		"Forms": func() error {
			_, err := c.Forms(ctx, "at", "loc_1")
			return err
		},
		"PhoneNumbers": func() error {
			_, err := c.PhoneNumbers(ctx, "at", "loc_1")
			return err
		},
		"Surveys": func() error {
			_, err := c.Surveys(ctx, "at", "loc_1")
			return err
		},
		"Contacts": func() error {
			_, _, err := c.Contacts(ctx, "at", "loc_1", 1, 20)
			return err
		},
		"ExchangeCode": func() error {
			_, err := c.ExchangeCode(ctx, "code")
			return err
		},
		"RefreshToken": func() error {
			_, err := c.RefreshToken(ctx, "rt")
			return err
		},
		"InstalledLocations": func() error {
			_, err := c.InstalledLocations(ctx, "at", "comp_1")
			return err
		},
	}

	for name, call := range calls {
		if err := call(); apperr.GetKind(err) != apperr.KindUpstream {
			t.Errorf("%s: expected upstream error from nil client, got %v", name, err)
		}
	}
}

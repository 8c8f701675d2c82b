package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/summitwebteam/lead-fire-cursor/internal/connections/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/connections/transport"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/highlevel"
	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

type fakeRepo struct {
	connections map[uuid.UUID]repository.Connection
	locations   map[uuid.UUID][]repository.Location
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		connections: make(map[uuid.UUID]repository.Connection),
		locations:   make(map[uuid.UUID][]repository.Location),
	}
}

func (f *fakeRepo) UpsertConnection(_ context.Context, params repository.UpsertConnectionParams) (repository.Connection, error) {
	for id, c := range f.connections {
		if c.UserID == params.UserID && c.LocationID == params.LocationID {
			c.AccessToken = params.AccessToken
			c.RefreshToken = params.RefreshToken
			c.TokenExpiresAt = params.TokenExpiresAt
			f.connections[id] = c
			return c, nil
		}
	}
	c := repository.Connection{
		ID:             uuid.New(),
		UserID:         params.UserID,
		LocationID:     params.LocationID,
		CompanyID:      params.CompanyID,
		AccessToken:    params.AccessToken,
		RefreshToken:   params.RefreshToken,
		TokenExpiresAt: params.TokenExpiresAt,
		CreatedAt:      time.Now(),
	}
	f.connections[c.ID] = c
	return c, nil
}

func (f *fakeRepo) GetConnection(_ context.Context, userID uuid.UUID, locationID string) (repository.Connection, error) {
	for _, c := range f.connections {
		if c.UserID == userID && c.LocationID == locationID {
			return c, nil
		}
	}
	return repository.Connection{}, apperr.NotFound("connection not found")
}

func (f *fakeRepo) ListConnections(_ context.Context, userID uuid.UUID) ([]repository.Connection, error) {
	out := make([]repository.Connection, 0)
	for _, c := range f.connections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListExpiring(_ context.Context, horizon time.Time) ([]repository.Connection, error) {
	out := make([]repository.Connection, 0)
	for _, c := range f.connections {
		if !c.TokenExpiresAt.After(horizon) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateTokens(_ context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error {
	c, ok := f.connections[id]
	if !ok {
		return apperr.NotFound("connection not found")
	}
	c.AccessToken = accessToken
	c.RefreshToken = refreshToken
	c.TokenExpiresAt = expiresAt
	f.connections[id] = c
	return nil
}

func (f *fakeRepo) DeleteConnection(_ context.Context, userID uuid.UUID, locationID string) error {
	for id, c := range f.connections {
		if c.UserID == userID && c.LocationID == locationID {
			delete(f.connections, id)
			return nil
		}
	}
	return apperr.NotFound("connection not found")
}

func (f *fakeRepo) DistinctUserIDs(_ context.Context) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, c := range f.connections {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}
	return ids, nil
}

func (f *fakeRepo) ReplaceLocations(_ context.Context, userID uuid.UUID, locations []repository.Location) error {
	f.locations[userID] = locations
	return nil
}

func (f *fakeRepo) ListLocations(_ context.Context, userID uuid.UUID) ([]repository.Location, error) {
	return f.locations[userID], nil
}

var _ repository.Repository = (*fakeRepo)(nil)

type fakeCRM struct {
	exchangeCalls int
	refreshCalls  int
	lastRefresh   string
	rotated       highlevel.Token
	locations     []highlevel.Location
}

func (f *fakeCRM) ExchangeCode(_ context.Context, code string) (highlevel.Token, error) {
	f.exchangeCalls++
	return highlevel.Token{
		AccessToken:  "at-" + code,
		RefreshToken: "rt-" + code,
		ExpiresIn:    604800,
		CompanyID:    "co_1",
	}, nil
}

func (f *fakeCRM) RefreshToken(_ context.Context, refreshToken string) (highlevel.Token, error) {
	f.refreshCalls++
	f.lastRefresh = refreshToken
	return f.rotated, nil
}

func (f *fakeCRM) InstalledLocations(_ context.Context, _, _ string) ([]highlevel.Location, error) {
	return f.locations, nil
}

func newTestService(crm *fakeCRM) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	return New(repo, crm, bus, log), repo
}

func TestConnectSavesConnectionAndLocations(t *testing.T) {
	crm := &fakeCRM{locations: []highlevel.Location{
		{ID: "loc_1", Name: "Main Office", CompanyID: "co_1", IsInstalled: true},
		{ID: "loc_2", Name: "Branch", CompanyID: "co_1", IsInstalled: true},
	}}
	svc, repo := newTestService(crm)
	userID := uuid.New()

	resp, err := svc.Connect(context.Background(), userID, transport.ConnectRequest{Code: "auth-code", LocationID: "loc_1"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if resp.LocationID != "loc_1" {
		t.Errorf("LocationID = %s", resp.LocationID)
	}

	conn, err := repo.GetConnection(context.Background(), userID, "loc_1")
	if err != nil {
		t.Fatalf("connection not saved: %v", err)
	}
	if conn.AccessToken != "at-auth-code" || conn.RefreshToken != "rt-auth-code" {
		t.Errorf("tokens not saved: %+v", conn)
	}
	if len(repo.locations[userID]) != 2 {
		t.Errorf("locations not cached: %v", repo.locations[userID])
	}
}

func TestAccessTokenRefreshesExpiredAndPersistsRotation(t *testing.T) {
	crm := &fakeCRM{rotated: highlevel.Token{
		AccessToken:  "at-new",
		RefreshToken: "rt-new",
		ExpiresIn:    604800,
	}}
	svc, repo := newTestService(crm)
	userID := uuid.New()

	seed, err := repo.UpsertConnection(context.Background(), repository.UpsertConnectionParams{
		UserID:         userID,
		LocationID:     "loc_1",
		AccessToken:    "at-old",
		RefreshToken:   "rt-old",
		TokenExpiresAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	token, err := svc.AccessToken(context.Background(), userID, "loc_1")
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token != "at-new" {
		t.Errorf("token = %s, want refreshed token", token)
	}
	if crm.lastRefresh != "rt-old" {
		t.Errorf("refresh used %s, want rt-old", crm.lastRefresh)
	}

	stored := repo.connections[seed.ID]
	if stored.RefreshToken != "rt-new" {
		t.Error("rotated refresh token not persisted")
	}
	if !stored.TokenExpiresAt.After(time.Now().Add(6 * 24 * time.Hour)) {
		t.Errorf("expiry not advanced: %v", stored.TokenExpiresAt)
	}
}

func TestAccessTokenSkipsRefreshWhenValid(t *testing.T) {
	crm := &fakeCRM{}
	svc, repo := newTestService(crm)
	userID := uuid.New()

	_, err := repo.UpsertConnection(context.Background(), repository.UpsertConnectionParams{
		UserID:         userID,
		LocationID:     "loc_1",
		AccessToken:    "at-valid",
		RefreshToken:   "rt-valid",
		TokenExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	token, err := svc.AccessToken(context.Background(), userID, "loc_1")
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token != "at-valid" {
		t.Errorf("token = %s", token)
	}
	if crm.refreshCalls != 0 {
		t.Errorf("refresh called %d times for a valid token", crm.refreshCalls)
	}
}

func TestRefreshKeepsOldRefreshTokenWhenNotRotated(t *testing.T) {
	crm := &fakeCRM{rotated: highlevel.Token{AccessToken: "at-new", ExpiresIn: 604800}}
	svc, repo := newTestService(crm)
	userID := uuid.New()

	seed, err := repo.UpsertConnection(context.Background(), repository.UpsertConnectionParams{
		UserID:         userID,
		LocationID:     "loc_1",
		AccessToken:    "at-old",
		RefreshToken:   "rt-keep",
		TokenExpiresAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.AccessToken(context.Background(), userID, "loc_1"); err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if got := repo.connections[seed.ID].RefreshToken; got != "rt-keep" {
		t.Errorf("refresh token = %s, want rt-keep", got)
	}
}

func TestRefreshExpiringCountsSuccesses(t *testing.T) {
	crm := &fakeCRM{rotated: highlevel.Token{AccessToken: "at-new", RefreshToken: "rt-new", ExpiresIn: 604800}}
	svc, repo := newTestService(crm)
	userID := uuid.New()

	for i, expiry := range []time.Time{
		time.Now().Add(30 * time.Minute),
		time.Now().Add(30 * 24 * time.Hour),
	} {
		_, err := repo.UpsertConnection(context.Background(), repository.UpsertConnectionParams{
			UserID:         userID,
			LocationID:     []string{"loc_a", "loc_b"}[i],
			AccessToken:    "at",
			RefreshToken:   "rt",
			TokenExpiresAt: expiry,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	refreshed, err := svc.RefreshExpiring(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("RefreshExpiring: %v", err)
	}
	if refreshed != 1 {
		t.Errorf("refreshed = %d, want 1", refreshed)
	}
}

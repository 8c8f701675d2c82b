package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/summitwebteam/lead-fire-cursor/internal/connections/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/connections/transport"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/highlevel"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

// globalLocationID is the placeholder location for agency-level connections
// established before the platform reports concrete locations.
const globalLocationID = "global"

// refreshSkew refreshes tokens slightly before their stated expiry so an
// in-flight request never races the deadline.
const refreshSkew = 5 * time.Minute

// CRMClient is the subset of the CRM API the connection lifecycle needs.
type CRMClient interface {
	ExchangeCode(ctx context.Context, code string) (highlevel.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (highlevel.Token, error)
	InstalledLocations(ctx context.Context, accessToken, companyID string) ([]highlevel.Location, error)
}

// Service manages CRM connection lifecycle: OAuth exchange, token rotation,
// and the cached location list.
type Service struct {
	repo repository.Repository
	crm  CRMClient
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new connections service.
func New(repo repository.Repository, crm CRMClient, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, crm: crm, bus: bus, log: log}
}

// Connect exchanges the authorization code, persists the connection, and
// caches the company's installed locations.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID, req transport.ConnectRequest) (transport.ConnectionResponse, error) {
	token, err := s.crm.ExchangeCode(ctx, req.Code)
	if err != nil {
		return transport.ConnectionResponse{}, err
	}

	locationID := req.LocationID
	if locationID == "" {
		locationID = token.LocationID
	}
	if locationID == "" {
		locationID = globalLocationID
	}

	var companyID *string
	if token.CompanyID != "" {
		companyID = &token.CompanyID
	}

	conn, err := s.repo.UpsertConnection(ctx, repository.UpsertConnectionParams{
		UserID:         userID,
		LocationID:     locationID,
		CompanyID:      companyID,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: token.ExpiresAt(),
	})
	if err != nil {
		return transport.ConnectionResponse{}, err
	}

	if token.CompanyID != "" {
		if err := s.syncLocations(ctx, userID, token.AccessToken, token.CompanyID); err != nil {
			// The connection itself is saved; a failed location sync is
			// recoverable on the next listing.
			s.log.SyncError(locationID, "installed_locations", err)
		}
	}

	s.bus.Publish(ctx, events.ConnectionEstablished{
		BaseEvent:  events.NewBaseEvent(),
		UserID:     userID,
		LocationID: conn.LocationID,
		CompanyID:  token.CompanyID,
	})
	s.log.Info("crm connection established", "locationId", conn.LocationID)
	return toConnectionResponse(conn), nil
}

// AccessToken returns a valid access token for the location, refreshing and
// persisting a rotated pair first when the stored token is expired or about
// to expire.
func (s *Service) AccessToken(ctx context.Context, userID uuid.UUID, locationID string) (string, error) {
	conn, err := s.repo.GetConnection(ctx, userID, locationID)
	if err != nil {
		return "", err
	}

	if time.Now().Before(conn.TokenExpiresAt.Add(-refreshSkew)) {
		return conn.AccessToken, nil
	}

	refreshed, err := s.refresh(ctx, conn)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// RefreshExpiring rotates tokens for every connection expiring within the
// horizon. Used by the scheduled refresh task. Individual failures are
// logged and skipped.
func (s *Service) RefreshExpiring(ctx context.Context, horizon time.Duration) (int, error) {
	expiring, err := s.repo.ListExpiring(ctx, time.Now().Add(horizon))
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, conn := range expiring {
		if _, err := s.refresh(ctx, conn); err != nil {
			s.log.SyncError(conn.LocationID, "token_refresh", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *Service) refresh(ctx context.Context, conn repository.Connection) (repository.Connection, error) {
	token, err := s.crm.RefreshToken(ctx, conn.RefreshToken)
	if err != nil {
		return repository.Connection{}, err
	}

	// The platform rotates the refresh token on every grant; losing the new
	// one would strand the connection.
	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = conn.RefreshToken
	}

	expiresAt := token.ExpiresAt()
	if err := s.repo.UpdateTokens(ctx, conn.ID, token.AccessToken, refreshToken, expiresAt); err != nil {
		return repository.Connection{}, err
	}

	conn.AccessToken = token.AccessToken
	conn.RefreshToken = refreshToken
	conn.TokenExpiresAt = expiresAt

	s.bus.Publish(ctx, events.ConnectionTokenRefreshed{
		BaseEvent:  events.NewBaseEvent(),
		LocationID: conn.LocationID,
	})
	return conn, nil
}

// List returns the user's connections.
func (s *Service) List(ctx context.Context, userID uuid.UUID) (transport.ConnectionListResponse, error) {
	items, err := s.repo.ListConnections(ctx, userID)
	if err != nil {
		return transport.ConnectionListResponse{}, err
	}

	resp := transport.ConnectionListResponse{Items: make([]transport.ConnectionResponse, 0, len(items))}
	for _, c := range items {
		resp.Items = append(resp.Items, toConnectionResponse(c))
	}
	return resp, nil
}

// ListLocations returns the user's cached CRM locations, refreshing the
// cache when a connection with a company is available.
func (s *Service) ListLocations(ctx context.Context, userID uuid.UUID) (transport.LocationListResponse, error) {
	connections, err := s.repo.ListConnections(ctx, userID)
	if err != nil {
		return transport.LocationListResponse{}, err
	}

	for _, conn := range connections {
		if conn.CompanyID == nil {
			continue
		}
		token, err := s.AccessToken(ctx, userID, conn.LocationID)
		if err != nil {
			s.log.SyncError(conn.LocationID, "installed_locations", err)
			continue
		}
		if err := s.syncLocations(ctx, userID, token, *conn.CompanyID); err != nil {
			s.log.SyncError(conn.LocationID, "installed_locations", err)
		}
		break
	}

	locations, err := s.repo.ListLocations(ctx, userID)
	if err != nil {
		return transport.LocationListResponse{}, err
	}

	resp := transport.LocationListResponse{Items: make([]transport.LocationResponse, 0, len(locations))}
	for _, loc := range locations {
		resp.Items = append(resp.Items, transport.LocationResponse{
			LocationID:  loc.LocationID,
			Name:        loc.Name,
			Address:     loc.Address,
			CompanyID:   loc.CompanyID,
			IsInstalled: loc.IsInstalled,
		})
	}
	return resp, nil
}

// Disconnect removes the user's connection for a location.
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID, locationID string) error {
	if err := s.repo.DeleteConnection(ctx, userID, locationID); err != nil {
		return err
	}
	s.log.Info("crm connection removed", "locationId", locationID)
	return nil
}

// Connections returns the raw connections for ingestion use.
func (s *Service) Connections(ctx context.Context, userID uuid.UUID) ([]repository.Connection, error) {
	return s.repo.ListConnections(ctx, userID)
}

func (s *Service) syncLocations(ctx context.Context, userID uuid.UUID, accessToken, companyID string) error {
	fetched, err := s.crm.InstalledLocations(ctx, accessToken, companyID)
	if err != nil {
		return err
	}

	locations := make([]repository.Location, 0, len(fetched))
	for _, loc := range fetched {
		entry := repository.Location{
			LocationID:  loc.ID,
			UserID:      userID,
			Name:        loc.Name,
			IsInstalled: loc.IsInstalled,
		}
		if loc.Address != "" {
			address := loc.Address
			entry.Address = &address
		}
		if loc.CompanyID != "" {
			company := loc.CompanyID
			entry.CompanyID = &company
		}
		locations = append(locations, entry)
	}
	return s.repo.ReplaceLocations(ctx, userID, locations)
}

func toConnectionResponse(c repository.Connection) transport.ConnectionResponse {
	return transport.ConnectionResponse{
		LocationID:     c.LocationID,
		CompanyID:      c.CompanyID,
		TokenExpiresAt: c.TokenExpiresAt,
		ConnectedAt:    c.CreatedAt,
	}
}

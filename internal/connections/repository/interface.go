package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Connection is a stored CRM OAuth connection for one location.
type Connection struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	LocationID     string
	CompanyID      *string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Location is a CRM sub-account visible to a connected user.
type Location struct {
	LocationID  string
	UserID      uuid.UUID
	Name        string
	Address     *string
	CompanyID   *string
	IsInstalled bool
	UpdatedAt   time.Time
}

// UpsertConnectionParams contains data for saving a connection.
type UpsertConnectionParams struct {
	UserID         uuid.UUID
	LocationID     string
	CompanyID      *string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
}

// Repository is the persistence boundary for CRM connections.
type Repository interface {
	UpsertConnection(ctx context.Context, params UpsertConnectionParams) (Connection, error)
	GetConnection(ctx context.Context, userID uuid.UUID, locationID string) (Connection, error)
	ListConnections(ctx context.Context, userID uuid.UUID) ([]Connection, error)
	// ListExpiring returns connections whose token expires within the horizon.
	ListExpiring(ctx context.Context, horizon time.Time) ([]Connection, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error
	DeleteConnection(ctx context.Context, userID uuid.UUID, locationID string) error
	// DistinctUserIDs returns every user with at least one stored connection.
	DistinctUserIDs(ctx context.Context) ([]uuid.UUID, error)

	ReplaceLocations(ctx context.Context, userID uuid.UUID, locations []Location) error
	ListLocations(ctx context.Context, userID uuid.UUID) ([]Location, error)
}

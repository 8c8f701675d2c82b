package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const connectionNotFoundMessage = "connection not found"

const connectionColumns = `id, user_id, location_id, company_id, access_token,
	refresh_token, token_expires_at, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new connections repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// UpsertConnection saves the connection, replacing tokens for an existing
// (user, location) pair.
func (r *Repo) UpsertConnection(ctx context.Context, params UpsertConnectionParams) (Connection, error) {
	query := `
		INSERT INTO user_connections (user_id, location_id, company_id, access_token, refresh_token, token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, location_id) DO UPDATE SET
			company_id = COALESCE(EXCLUDED.company_id, user_connections.company_id),
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = now()
		RETURNING ` + connectionColumns

	c, err := scanConnection(r.pool.QueryRow(ctx, query,
		params.UserID, params.LocationID, params.CompanyID,
		params.AccessToken, params.RefreshToken, params.TokenExpiresAt,
	))
	if err != nil {
		return Connection{}, fmt.Errorf("upsert connection: %w", err)
	}
	return c, nil
}

// GetConnection retrieves the user's connection for a location.
func (r *Repo) GetConnection(ctx context.Context, userID uuid.UUID, locationID string) (Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM user_connections WHERE user_id = $1 AND location_id = $2`

	c, err := scanConnection(r.pool.QueryRow(ctx, query, userID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Connection{}, apperr.NotFound(connectionNotFoundMessage)
		}
		return Connection{}, fmt.Errorf("get connection: %w", err)
	}
	return c, nil
}

// ListConnections retrieves all of the user's connections.
func (r *Repo) ListConnections(ctx context.Context, userID uuid.UUID) ([]Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM user_connections WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	return collectConnections(rows)
}

// ListExpiring returns connections whose token expires before the horizon.
func (r *Repo) ListExpiring(ctx context.Context, horizon time.Time) ([]Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM user_connections WHERE token_expires_at <= $1`

	rows, err := r.pool.Query(ctx, query, horizon)
	if err != nil {
		return nil, fmt.Errorf("list expiring connections: %w", err)
	}
	defer rows.Close()

	return collectConnections(rows)
}

// DistinctUserIDs returns every user with at least one stored connection.
func (r *Repo) DistinctUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM user_connections`)
	if err != nil {
		return nil, fmt.Errorf("list connected users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateTokens persists a rotated token pair.
func (r *Repo) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_connections SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = now()
		WHERE id = $1`,
		id, accessToken, refreshToken, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("update connection tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(connectionNotFoundMessage)
	}
	return nil
}

// DeleteConnection removes a connection and its cached locations.
func (r *Repo) DeleteConnection(ctx context.Context, userID uuid.UUID, locationID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM user_connections WHERE user_id = $1 AND location_id = $2`,
		userID, locationID,
	)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(connectionNotFoundMessage)
	}
	return nil
}

// ReplaceLocations swaps the user's cached location list in one transaction.
func (r *Repo) ReplaceLocations(ctx context.Context, userID uuid.UUID, locations []Location) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin locations tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM highlevel_locations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear locations: %w", err)
	}
	for _, loc := range locations {
		_, err := tx.Exec(ctx, `
			INSERT INTO highlevel_locations (location_id, user_id, name, address, company_id, is_installed)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			loc.LocationID, userID, loc.Name, loc.Address, loc.CompanyID, loc.IsInstalled,
		)
		if err != nil {
			return fmt.Errorf("insert location %s: %w", loc.LocationID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit locations tx: %w", err)
	}
	return nil
}

// ListLocations retrieves the user's cached locations.
func (r *Repo) ListLocations(ctx context.Context, userID uuid.UUID) ([]Location, error) {
	query := `SELECT location_id, user_id, name, address, company_id, is_installed, updated_at
		FROM highlevel_locations WHERE user_id = $1 ORDER BY name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	locations := make([]Location, 0)
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.LocationID, &loc.UserID, &loc.Name, &loc.Address, &loc.CompanyID, &loc.IsInstalled, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func scanConnection(row pgx.Row) (Connection, error) {
	var c Connection
	err := row.Scan(&c.ID, &c.UserID, &c.LocationID, &c.CompanyID, &c.AccessToken,
		&c.RefreshToken, &c.TokenExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func collectConnections(rows pgx.Rows) ([]Connection, error) {
	connections := make([]Connection, 0)
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		connections = append(connections, c)
	}
	return connections, rows.Err()
}

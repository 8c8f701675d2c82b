package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryStore is the Postgres-backed contact history, scoped to one user.
// Used by live ingestion; batch passes rebuild an in-memory store instead so
// a re-run over the same leads stays idempotent.
type HistoryStore struct {
	pool   *pgxpool.Pool
	userID uuid.UUID
}

// NewHistoryStore creates a contact history store for the user.
func NewHistoryStore(pool *pgxpool.Pool, userID uuid.UUID) *HistoryStore {
	return &HistoryStore{pool: pool, userID: userID}
}

var _ qualify.HistoryStore = (*HistoryStore)(nil)

// LastSeen returns the previous sighting for the identity key.
func (s *HistoryStore) LastSeen(ctx context.Context, key string) (time.Time, bool, error) {
	var seenAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT last_seen_at FROM contact_history WHERE user_id = $1 AND identity_key = $2`,
		s.userID, key,
	).Scan(&seenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("contact history last seen: %w", err)
	}
	return seenAt, true, nil
}

// Record overwrites the last-seen timestamp for the identity key.
func (s *HistoryStore) Record(ctx context.Context, key string, seenAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contact_history (user_id, identity_key, last_seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, identity_key) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at`,
		s.userID, key, seenAt,
	)
	if err != nil {
		return fmt.Errorf("contact history record: %w", err)
	}
	return nil
}

// Package ingest provides the lead ingestion bounded context: bulk CRM
// pulls, the inbound webhook path, and per-location processing state.
package ingest

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAPIKeyNotFound is returned for unknown or inactive webhook keys.
var ErrAPIKeyNotFound = errors.New("webhook API key not found")

// APIKey authenticates inbound webhook calls for one user.
type APIKey struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	KeyHash   string
	KeyPrefix string
	IsActive  bool
	CreatedAt time.Time
}

// Repository provides data access for webhook API keys and processing state.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new ingest repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the plaintext key
// and its hash. The plaintext is returned only once; only the hash is stored.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}
	plaintext = "lfk_" + hex.EncodeToString(bytes)
	hash = HashKey(plaintext)
	prefix = plaintext[:12]
	return plaintext, hash, prefix, nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

// CreateAPIKey stores a new webhook key for the user.
func (r *Repository) CreateAPIKey(ctx context.Context, userID uuid.UUID, name, keyHash, keyPrefix string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		INSERT INTO webhook_api_keys (user_id, name, key_hash, key_prefix)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, name, key_hash, key_prefix, is_active, created_at`,
		userID, name, keyHash, keyPrefix,
	).Scan(&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt)
	if err != nil {
		return APIKey{}, fmt.Errorf("create api key: %w", err)
	}
	return key, nil
}

// GetAPIKeyByHash resolves an active key by its hash.
func (r *Repository) GetAPIKeyByHash(ctx context.Context, keyHash string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, key_hash, key_prefix, is_active, created_at
		FROM webhook_api_keys WHERE key_hash = $1 AND is_active = true`,
		keyHash,
	).Scan(&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, ErrAPIKeyNotFound
	}
	if err != nil {
		return APIKey{}, fmt.Errorf("get api key: %w", err)
	}
	return key, nil
}

// LastProcessedAt returns the high-water mark for a location, zero when the
// location was never synced.
func (r *Repository) LastProcessedAt(ctx context.Context, userID uuid.UUID, locationID string) (time.Time, error) {
	var last time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT last_processed_at FROM processing_state WHERE user_id = $1 AND location_id = $2`,
		userID, locationID,
	).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get processing state: %w", err)
	}
	return last, nil
}

// SetLastProcessedAt advances the high-water mark for a location.
func (r *Repository) SetLastProcessedAt(ctx context.Context, userID uuid.UUID, locationID string, processedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO processing_state (user_id, location_id, last_processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, location_id) DO UPDATE SET
			last_processed_at = EXCLUDED.last_processed_at, updated_at = now()`,
		userID, locationID, processedAt,
	)
	if err != nil {
		return fmt.Errorf("set processing state: %w", err)
	}
	return nil
}

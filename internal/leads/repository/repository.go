package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"
	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `id, user_id, campaign_id, location_id, source, source_id,
	contact_name, phone, email, call_duration, call_status,
	qualified, disqualify_reason, needs_review, approval_status, dispute_reason,
	first_time, event_date, raw_data, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Upsert inserts the lead or refreshes contact fields on conflict. Verdict
// and approval columns are left untouched on refresh so re-syncs never reset
// classification state.
func (r *Repo) Upsert(ctx context.Context, params UpsertParams) (Lead, bool, error) {
	query := `
		INSERT INTO leads (user_id, campaign_id, location_id, source, source_id,
			contact_name, phone, email, call_duration, call_status, event_date, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, source, source_id) DO UPDATE SET
			campaign_id = COALESCE(EXCLUDED.campaign_id, leads.campaign_id),
			contact_name = COALESCE(EXCLUDED.contact_name, leads.contact_name),
			phone = COALESCE(EXCLUDED.phone, leads.phone),
			email = COALESCE(EXCLUDED.email, leads.email),
			call_duration = COALESCE(EXCLUDED.call_duration, leads.call_duration),
			call_status = COALESCE(EXCLUDED.call_status, leads.call_status),
			event_date = COALESCE(EXCLUDED.event_date, leads.event_date),
			raw_data = EXCLUDED.raw_data,
			updated_at = now()
		RETURNING ` + leadColumns + `, (created_at = updated_at) AS inserted`

	var l Lead
	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		params.UserID, params.CampaignID, params.LocationID, params.Source, params.SourceID,
		params.ContactName, params.Phone, params.Email, params.CallDuration, params.CallStatus,
		params.EventDate, params.RawData,
	).Scan(leadFields(&l, &inserted)...)
	if err != nil {
		return Lead{}, false, fmt.Errorf("upsert lead: %w", err)
	}
	return l, inserted, nil
}

// GetByID retrieves a lead owned by the user.
func (r *Repo) GetByID(ctx context.Context, userID, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`

	var l Lead
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(leadFields(&l, nil)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return l, nil
}

// List retrieves leads with filters and pagination, newest event first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, params ListParams) ([]Lead, int, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	addFilter := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if params.CampaignID != nil {
		addFilter("campaign_id = $%d", *params.CampaignID)
	}
	if params.Source != "" {
		addFilter("source = $%d", params.Source)
	}
	if params.ApprovalStatus != "" {
		addFilter("approval_status = $%d", params.ApprovalStatus)
	}
	if params.NeedsReview != nil {
		addFilter("needs_review = $%d", *params.NeedsReview)
	}
	if params.From != nil {
		addFilter("event_date >= $%d", *params.From)
	}
	if params.To != nil {
		addFilter("event_date <= $%d", *params.To)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT count(*) FROM leads WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, params.Offset)
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s
		ORDER BY event_date DESC NULLS LAST, created_at DESC
		LIMIT $%d OFFSET $%d`, leadColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListForClassification returns the campaign's leads oldest event first so a
// pass replays contact history in the order it happened. Leads without a
// parseable event date sort last.
func (r *Repo) ListForClassification(ctx context.Context, userID, campaignID uuid.UUID) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE user_id = $1 AND campaign_id = $2
		ORDER BY event_date ASC NULLS LAST, created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list leads for classification: %w", err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

// SetVerdicts writes automatic verdicts in a single transaction. The
// approval_status guard keeps manual decisions authoritative.
func (r *Repo) SetVerdicts(ctx context.Context, userID uuid.UUID, verdicts []Verdict) error {
	if len(verdicts) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin verdicts tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE leads SET qualified = $3, disqualify_reason = $4, needs_review = $5,
			first_time = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND approval_status = 'pending'`

	for _, v := range verdicts {
		if _, err := tx.Exec(ctx, query, v.LeadID, userID, v.Qualified, v.DisqualifyReason, v.NeedsReview, v.FirstTime); err != nil {
			return fmt.Errorf("set verdict for lead %s: %w", v.LeadID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit verdicts tx: %w", err)
	}
	return nil
}

// SetApproval records a manual approval decision on the lead.
func (r *Repo) SetApproval(ctx context.Context, userID, id uuid.UUID, status qualify.ApprovalStatus, disputeReason *string) (Lead, error) {
	query := `
		UPDATE leads SET approval_status = $3, dispute_reason = $4, needs_review = false, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + leadColumns

	var l Lead
	err := r.pool.QueryRow(ctx, query, id, userID, string(status), disputeReason).Scan(leadFields(&l, nil)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("set lead approval: %w", err)
	}
	return l, nil
}

// leadFields returns scan destinations in leadColumns order. The optional
// extra destination covers computed columns appended after leadColumns.
func leadFields(l *Lead, extra *bool) []interface{} {
	fields := []interface{}{
		&l.ID, &l.UserID, &l.CampaignID, &l.LocationID, &l.Source, &l.SourceID,
		&l.ContactName, &l.Phone, &l.Email, &l.CallDuration, &l.CallStatus,
		&l.Qualified, &l.DisqualifyReason, &l.NeedsReview, &l.ApprovalStatus, &l.DisputeReason,
		&l.FirstTime, &l.EventDate, &l.RawData, &l.CreatedAt, &l.UpdatedAt,
	}
	if extra != nil {
		fields = append(fields, extra)
	}
	return fields
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		var l Lead
		if err := rows.Scan(leadFields(&l, nil)...); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

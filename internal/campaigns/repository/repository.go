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

const campaignNotFoundMessage = "campaign not found"

const campaignColumns = `id, user_id, name, description, status, source_types,
	phone_number_ids, form_ids, facebook_form_ids, survey_ids, filter_rules,
	created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new campaigns repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a new campaign with default status "active".
func (r *Repo) Create(ctx context.Context, params CreateParams) (Campaign, error) {
	query := `
		INSERT INTO campaigns (user_id, name, description, source_types, phone_number_ids, form_ids, facebook_form_ids, survey_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + campaignColumns

	row := r.pool.QueryRow(ctx, query,
		params.UserID, params.Name, params.Description, emptyIfNil(params.SourceTypes),
		emptyIfNil(params.PhoneNumberIDs), emptyIfNil(params.FormIDs),
		emptyIfNil(params.FacebookFormIDs), emptyIfNil(params.SurveyIDs),
	)

	c, err := scanCampaign(row)
	if err != nil {
		return Campaign{}, fmt.Errorf("create campaign: %w", err)
	}
	return c, nil
}

// GetByID retrieves a campaign owned by the user.
func (r *Repo) GetByID(ctx context.Context, userID, id uuid.UUID) (Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 AND user_id = $2`

	c, err := scanCampaign(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, apperr.NotFound(campaignNotFoundMessage)
		}
		return Campaign{}, fmt.Errorf("get campaign by id: %w", err)
	}
	return c, nil
}

// List retrieves all campaigns owned by the user, newest first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Update applies partial changes to a campaign.
func (r *Repo) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (Campaign, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{id, userID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	if params.Status != nil {
		addSet("status", *params.Status)
	}
	if params.SourceTypes != nil {
		addSet("source_types", params.SourceTypes)
	}
	if params.PhoneNumberIDs != nil {
		addSet("phone_number_ids", params.PhoneNumberIDs)
	}
	if params.FormIDs != nil {
		addSet("form_ids", params.FormIDs)
	}
	if params.FacebookFormIDs != nil {
		addSet("facebook_form_ids", params.FacebookFormIDs)
	}
	if params.SurveyIDs != nil {
		addSet("survey_ids", params.SurveyIDs)
	}

	query := `UPDATE campaigns SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + campaignColumns

	c, err := scanCampaign(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, apperr.NotFound(campaignNotFoundMessage)
		}
		return Campaign{}, fmt.Errorf("update campaign: %w", err)
	}
	return c, nil
}

// Delete removes a campaign owned by the user.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(campaignNotFoundMessage)
	}
	return nil
}

// UpdateRules replaces the campaign's filter_rules payload.
func (r *Repo) UpdateRules(ctx context.Context, userID, id uuid.UUID, rules qualify.Rules) (Campaign, error) {
	query := `
		UPDATE campaigns SET filter_rules = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + campaignColumns

	c, err := scanCampaign(r.pool.QueryRow(ctx, query, id, userID, rules))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, apperr.NotFound(campaignNotFoundMessage)
		}
		return Campaign{}, fmt.Errorf("update campaign rules: %w", err)
	}
	return c, nil
}

func scanCampaign(row pgx.Row) (Campaign, error) {
	var c Campaign
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.Status, &c.SourceTypes,
		&c.PhoneNumberIDs, &c.FormIDs, &c.FacebookFormIDs, &c.SurveyIDs,
		&c.FilterRules, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

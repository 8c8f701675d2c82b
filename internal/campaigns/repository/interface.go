package repository

import (
	"context"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"

	"github.com/google/uuid"
)

// Campaign is the persisted campaign row.
type Campaign struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Name            string
	Description     *string
	Status          string
	SourceTypes     []string
	PhoneNumberIDs  []string
	FormIDs         []string
	FacebookFormIDs []string
	SurveyIDs       []string
	FilterRules     *qualify.Rules
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateParams contains data for inserting a campaign.
type CreateParams struct {
	UserID          uuid.UUID
	Name            string
	Description     *string
	SourceTypes     []string
	PhoneNumberIDs  []string
	FormIDs         []string
	FacebookFormIDs []string
	SurveyIDs       []string
}

// UpdateParams contains data for updating a campaign. Nil fields are left unchanged.
type UpdateParams struct {
	Name            *string
	Description     *string
	Status          *string
	SourceTypes     []string
	PhoneNumberIDs  []string
	FormIDs         []string
	FacebookFormIDs []string
	SurveyIDs       []string
}

// Repository is the persistence boundary for campaigns.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Campaign, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (Campaign, error)
	List(ctx context.Context, userID uuid.UUID) ([]Campaign, error)
	Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (Campaign, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	UpdateRules(ctx context.Context, userID, id uuid.UUID, rules qualify.Rules) (Campaign, error)
}

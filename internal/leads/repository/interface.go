package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"

	"github.com/google/uuid"
)

// Lead is the persisted lead row. Qualified is tri-state: nil until a
// classification pass has judged the lead.
type Lead struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CampaignID *uuid.UUID
	LocationID string

	Source   string
	SourceID string

	ContactName *string
	Phone       *string
	Email       *string

	// Call leads only.
	CallDuration *int
	CallStatus   *string

	Qualified        *bool
	DisqualifyReason *string
	NeedsReview      bool

	ApprovalStatus qualify.ApprovalStatus
	DisputeReason  *string

	// FirstTime is false once the contact was seen in an earlier lead.
	FirstTime bool

	// EventDate is when the contact event happened at the source. Nil when the
	// source timestamp could not be parsed; such leads are skipped by repeat
	// comparison and flagged for review.
	EventDate *time.Time

	RawData json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertParams contains data for inserting or refreshing a lead from the CRM.
type UpsertParams struct {
	UserID       uuid.UUID
	CampaignID   *uuid.UUID
	LocationID   string
	Source       string
	SourceID     string
	ContactName  *string
	Phone        *string
	Email        *string
	CallDuration *int
	CallStatus   *string
	EventDate    *time.Time
	RawData      json.RawMessage
}

// ListParams filters and paginates lead listings.
type ListParams struct {
	CampaignID     *uuid.UUID
	Source         string
	ApprovalStatus string
	NeedsReview    *bool
	From           *time.Time
	To             *time.Time
	Offset         int
	Limit          int
}

// Verdict is one classification outcome to persist.
type Verdict struct {
	LeadID           uuid.UUID
	Qualified        bool
	DisqualifyReason *string
	NeedsReview      bool
	FirstTime        bool
}

// Repository is the persistence boundary for leads.
type Repository interface {
	// Upsert inserts a lead or refreshes an existing one matched on
	// (user_id, source, source_id). Returns the row and whether it was created.
	Upsert(ctx context.Context, params UpsertParams) (Lead, bool, error)

	GetByID(ctx context.Context, userID, id uuid.UUID) (Lead, error)
	List(ctx context.Context, userID uuid.UUID, params ListParams) ([]Lead, int, error)

	// ListForClassification returns every lead of a campaign in chronological
	// event order, unparseable timestamps last.
	ListForClassification(ctx context.Context, userID, campaignID uuid.UUID) ([]Lead, error)

	// SetVerdicts persists automatic verdicts. Rows with a manual approval
	// state are silently skipped; the automatic pass never overwrites a human
	// decision.
	SetVerdicts(ctx context.Context, userID uuid.UUID, verdicts []Verdict) error

	// SetApproval records a manual approval decision.
	SetApproval(ctx context.Context, userID, id uuid.UUID, status qualify.ApprovalStatus, disputeReason *string) (Lead, error)
}

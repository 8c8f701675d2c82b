package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListLeadsRequest carries query filters for lead listings.
type ListLeadsRequest struct {
	CampaignID     string `form:"campaignId" validate:"omitempty,uuid"`
	Source         string `form:"source" validate:"omitempty,oneof=call form facebook survey"`
	ApprovalStatus string `form:"approvalStatus" validate:"omitempty,oneof=pending approved disputed"`
	NeedsReview    *bool  `form:"needsReview"`
	From           string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Page           int    `form:"page" validate:"omitempty,min=1"`
	PageSize       int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// DisputeLeadRequest carries the mandatory reason for a dispute.
type DisputeLeadRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	CampaignID     *uuid.UUID `json:"campaignId,omitempty"`
	LocationID     string     `json:"locationId"`
	Source         string     `json:"source"`
	SourceID       string     `json:"sourceId"`
	ContactName    *string    `json:"contactName,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Email          *string    `json:"email,omitempty"`
	CallDuration   *int       `json:"callDuration,omitempty"`
	CallStatus     *string    `json:"callStatus,omitempty"`
	Qualified      *bool      `json:"qualified"`
	Reason         *string    `json:"reason,omitempty"`
	NeedsReview    bool       `json:"needsReview"`
	ApprovalStatus string     `json:"approvalStatus"`
	DisputeReason  *string    `json:"disputeReason,omitempty"`
	FirstTime      bool       `json:"firstTime"`
	EventDate      *time.Time `json:"eventDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// LeadListResponse wraps a paginated list of leads.
type LeadListResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// ClassificationSummary reports the outcome of a classification pass.
type ClassificationSummary struct {
	CampaignID   uuid.UUID `json:"campaignId"`
	Total        int       `json:"total"`
	Qualified    int       `json:"qualified"`
	Disqualified int       `json:"disqualified"`
	Flagged      int       `json:"flagged"`
	Skipped      int       `json:"skipped"`
}

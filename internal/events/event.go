// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/summitwebteam/lead-fire-cursor/platform/events"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadIngested is published when a lead record is created from a CRM pull or
// an inbound webhook.
type LeadIngested struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	CampaignID *uuid.UUID `json:"campaignId,omitempty"`
	LocationID string     `json:"locationId"`
	Source     string     `json:"source"`
}

func (e LeadIngested) EventName() string { return "leads.lead.ingested" }

// LeadAutoDisqualified is published when a classification pass disqualifies a
// lead. Used for transparency and downstream handlers.
type LeadAutoDisqualified struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	CampaignID *uuid.UUID `json:"campaignId,omitempty"`
	Reason     string     `json:"reason"`
}

func (e LeadAutoDisqualified) EventName() string { return "leads.lead.auto_disqualified" }

// LeadApproved is published when a human approves a lead.
type LeadApproved struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	ApprovedBy uuid.UUID `json:"approvedBy"`
}

func (e LeadApproved) EventName() string { return "leads.lead.approved" }

// LeadDisputed is published when a human disputes a lead.
type LeadDisputed struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	DisputedBy uuid.UUID `json:"disputedBy"`
	Reason     string    `json:"reason"`
}

func (e LeadDisputed) EventName() string { return "leads.lead.disputed" }

// =============================================================================
// Campaigns Domain Events
// =============================================================================

// CampaignRulesUpdated is published when a campaign's qualification rules
// change, so listeners can schedule a reclassification pass.
type CampaignRulesUpdated struct {
	BaseEvent
	CampaignID uuid.UUID `json:"campaignId"`
	UserID     uuid.UUID `json:"userId"`
}

func (e CampaignRulesUpdated) EventName() string { return "campaigns.rules.updated" }

// =============================================================================
// Connections Domain Events
// =============================================================================

// ConnectionEstablished is published when a CRM OAuth connection is created
// or re-authorized for a location.
type ConnectionEstablished struct {
	BaseEvent
	UserID     uuid.UUID `json:"userId"`
	LocationID string    `json:"locationId"`
	CompanyID  string    `json:"companyId,omitempty"`
}

func (e ConnectionEstablished) EventName() string { return "connections.established" }

// ConnectionTokenRefreshed is published after a successful token rotation.
type ConnectionTokenRefreshed struct {
	BaseEvent
	LocationID string `json:"locationId"`
}

func (e ConnectionTokenRefreshed) EventName() string { return "connections.token.refreshed" }

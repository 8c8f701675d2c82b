package transport

import (
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"

	"github.com/google/uuid"
)

// CreateCampaignRequest contains data for creating a new campaign.
type CreateCampaignRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=100"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	SourceTypes     []string `json:"sourceTypes,omitempty" validate:"omitempty,dive,oneof=call form facebook survey"`
	PhoneNumberIDs  []string `json:"phoneNumberIds,omitempty" validate:"omitempty,dive,max=100"`
	FormIDs         []string `json:"formIds,omitempty" validate:"omitempty,dive,max=100"`
	FacebookFormIDs []string `json:"facebookFormIds,omitempty" validate:"omitempty,dive,max=100"`
	SurveyIDs       []string `json:"surveyIds,omitempty" validate:"omitempty,dive,max=100"`
}

// UpdateCampaignRequest contains data for updating an existing campaign.
type UpdateCampaignRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Status          *string  `json:"status,omitempty" validate:"omitempty,oneof=active paused archived"`
	SourceTypes     []string `json:"sourceTypes,omitempty" validate:"omitempty,dive,oneof=call form facebook survey"`
	PhoneNumberIDs  []string `json:"phoneNumberIds,omitempty" validate:"omitempty,dive,max=100"`
	FormIDs         []string `json:"formIds,omitempty" validate:"omitempty,dive,max=100"`
	FacebookFormIDs []string `json:"facebookFormIds,omitempty" validate:"omitempty,dive,max=100"`
	SurveyIDs       []string `json:"surveyIds,omitempty" validate:"omitempty,dive,max=100"`
}

// UpdateRulesRequest carries a campaign's qualification rule configuration.
type UpdateRulesRequest struct {
	MinCallDuration      int      `json:"minCallDuration" validate:"min=0,max=120"`
	CallTypes            []string `json:"callTypes" validate:"omitempty,dive,oneof=answered missed voicemail"`
	RequireEmail         bool     `json:"requireEmail"`
	RequirePhone         bool     `json:"requirePhone"`
	ExcludeRepeatCallers bool     `json:"excludeRepeatCallers"`
	RepeatThresholdDays  int      `json:"repeatThresholdDays" validate:"oneof=7 14 30 60 90"`
}

// Rules converts the request into the domain rule configuration.
func (r UpdateRulesRequest) Rules() qualify.Rules {
	return qualify.Rules{
		MinCallDuration:      r.MinCallDuration,
		CallTypes:            r.CallTypes,
		RequireEmail:         r.RequireEmail,
		RequirePhone:         r.RequirePhone,
		ExcludeRepeatCallers: r.ExcludeRepeatCallers,
		RepeatThresholdDays:  r.RepeatThresholdDays,
	}
}

// CampaignResponse represents a campaign in API responses.
type CampaignResponse struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Description     *string       `json:"description,omitempty"`
	Status          string        `json:"status"`
	SourceTypes     []string      `json:"sourceTypes"`
	PhoneNumberIDs  []string      `json:"phoneNumberIds"`
	FormIDs         []string      `json:"formIds"`
	FacebookFormIDs []string      `json:"facebookFormIds"`
	SurveyIDs       []string      `json:"surveyIds"`
	FilterRules     qualify.Rules `json:"filterRules"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}

// CampaignListResponse wraps a list of campaigns.
type CampaignListResponse struct {
	Items []CampaignResponse `json:"items"`
	Total int                `json:"total"`
}

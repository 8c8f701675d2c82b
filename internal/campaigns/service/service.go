package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns/transport"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

// Service provides business logic for campaigns.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new campaigns service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Create creates a new campaign. Source types not given explicitly are
// derived from which tracked source IDs the campaign carries.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req transport.CreateCampaignRequest) (transport.CampaignResponse, error) {
	sourceTypes := req.SourceTypes
	if len(sourceTypes) == 0 {
		sourceTypes = deriveSourceTypes(req.PhoneNumberIDs, req.FormIDs, req.FacebookFormIDs, req.SurveyIDs)
	}

	params := repository.CreateParams{
		UserID:          userID,
		Name:            req.Name,
		Description:     req.Description,
		SourceTypes:     sourceTypes,
		PhoneNumberIDs:  req.PhoneNumberIDs,
		FormIDs:         req.FormIDs,
		FacebookFormIDs: req.FacebookFormIDs,
		SurveyIDs:       req.SurveyIDs,
	}

	c, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.CampaignResponse{}, err
	}

	s.log.Info("campaign created", "id", c.ID, "name", c.Name, "sourceTypes", c.SourceTypes)
	return toResponse(c), nil
}

// GetByID retrieves a campaign owned by the user.
func (s *Service) GetByID(ctx context.Context, userID, id uuid.UUID) (transport.CampaignResponse, error) {
	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return transport.CampaignResponse{}, err
	}
	return toResponse(c), nil
}

// List retrieves all campaigns owned by the user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) (transport.CampaignListResponse, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return transport.CampaignListResponse{}, err
	}

	resp := transport.CampaignListResponse{
		Items: make([]transport.CampaignResponse, 0, len(items)),
		Total: len(items),
	}
	for _, c := range items {
		resp.Items = append(resp.Items, toResponse(c))
	}
	return resp, nil
}

// Update applies partial changes to a campaign. When the caller changes
// tracked source IDs without setting source types explicitly, the types are
// re-derived against the updated campaign.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req transport.UpdateCampaignRequest) (transport.CampaignResponse, error) {
	params := repository.UpdateParams{
		Name:            req.Name,
		Description:     req.Description,
		Status:          req.Status,
		SourceTypes:     req.SourceTypes,
		PhoneNumberIDs:  req.PhoneNumberIDs,
		FormIDs:         req.FormIDs,
		FacebookFormIDs: req.FacebookFormIDs,
		SurveyIDs:       req.SurveyIDs,
	}

	c, err := s.repo.Update(ctx, userID, id, params)
	if err != nil {
		return transport.CampaignResponse{}, err
	}

	if req.SourceTypes == nil && touchesSourceIDs(req) {
		derived := deriveSourceTypes(c.PhoneNumberIDs, c.FormIDs, c.FacebookFormIDs, c.SurveyIDs)
		c, err = s.repo.Update(ctx, userID, id, repository.UpdateParams{SourceTypes: derived})
		if err != nil {
			return transport.CampaignResponse{}, err
		}
	}

	s.log.Info("campaign updated", "id", c.ID)
	return toResponse(c), nil
}

// Delete removes a campaign owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info("campaign deleted", "id", id)
	return nil
}

// GetRules returns the campaign's qualification rules, filling defaults for
// campaigns that never had rules saved.
func (s *Service) GetRules(ctx context.Context, userID, id uuid.UUID) (qualify.Rules, error) {
	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return qualify.Rules{}, err
	}
	return effectiveRules(c), nil
}

// UpdateRules validates and persists new qualification rules, then publishes
// an event so listeners can schedule a reclassification pass.
func (s *Service) UpdateRules(ctx context.Context, userID, id uuid.UUID, req transport.UpdateRulesRequest) (qualify.Rules, error) {
	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return qualify.Rules{}, err
	}

	rules := req.Rules()
	if err := rules.Validate(hasSourceType(c.SourceTypes, qualify.SourceCall)); err != nil {
		return qualify.Rules{}, err
	}

	updated, err := s.repo.UpdateRules(ctx, userID, id, rules)
	if err != nil {
		return qualify.Rules{}, err
	}

	s.bus.Publish(ctx, events.CampaignRulesUpdated{
		BaseEvent:  events.NewBaseEvent(),
		CampaignID: updated.ID,
		UserID:     userID,
	})

	s.log.Info("campaign rules updated", "id", updated.ID, "minCallDuration", rules.MinCallDuration, "repeatThresholdDays", rules.RepeatThresholdDays)
	return effectiveRules(updated), nil
}

// deriveSourceTypes maps tracked source IDs to the source types a campaign
// will accept leads from. A campaign with no tracked IDs defaults to forms.
func deriveSourceTypes(phoneNumberIDs, formIDs, facebookFormIDs, surveyIDs []string) []string {
	types := make([]string, 0, 4)
	if len(phoneNumberIDs) > 0 {
		types = append(types, qualify.SourceCall)
	}
	if len(formIDs) > 0 {
		types = append(types, qualify.SourceForm)
	}
	if len(facebookFormIDs) > 0 {
		types = append(types, qualify.SourceFacebook)
	}
	if len(surveyIDs) > 0 {
		types = append(types, qualify.SourceSurvey)
	}
	if len(types) == 0 {
		types = append(types, qualify.SourceForm)
	}
	return types
}

func touchesSourceIDs(req transport.UpdateCampaignRequest) bool {
	return req.PhoneNumberIDs != nil || req.FormIDs != nil || req.FacebookFormIDs != nil || req.SurveyIDs != nil
}

func hasSourceType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func effectiveRules(c repository.Campaign) qualify.Rules {
	if c.FilterRules == nil {
		return qualify.DefaultRules()
	}
	return *c.FilterRules
}

func toResponse(c repository.Campaign) transport.CampaignResponse {
	return transport.CampaignResponse{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		Status:          c.Status,
		SourceTypes:     emptySlice(c.SourceTypes),
		PhoneNumberIDs:  emptySlice(c.PhoneNumberIDs),
		FormIDs:         emptySlice(c.FormIDs),
		FacebookFormIDs: emptySlice(c.FacebookFormIDs),
		SurveyIDs:       emptySlice(c.SurveyIDs),
		FilterRules:     effectiveRules(c),
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.Format(time.RFC3339),
	}
}

func emptySlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

package ingest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	campaignrepo "github.com/summitwebteam/lead-fire-cursor/internal/campaigns/repository"
	connrepo "github.com/summitwebteam/lead-fire-cursor/internal/connections/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/highlevel"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"
	leadrepo "github.com/summitwebteam/lead-fire-cursor/internal/leads/repository"
	leadtransport "github.com/summitwebteam/lead-fire-cursor/internal/leads/transport"
	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
	"github.com/summitwebteam/lead-fire-cursor/platform/config"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

// syncConcurrency bounds parallel per-location pulls so one user with many
// locations cannot exhaust the CRM rate budget.
const syncConcurrency = 4

// LeadStore is the slice of the leads repository ingestion writes through.
type LeadStore interface {
	Upsert(ctx context.Context, params leadrepo.UpsertParams) (leadrepo.Lead, bool, error)
}

// Classifier runs a classification pass after new leads land.
type Classifier interface {
	Reclassify(ctx context.Context, userID, campaignID uuid.UUID) (leadtransport.ClassificationSummary, error)
}

// ConnectionSource supplies CRM connections and valid access tokens.
type ConnectionSource interface {
	Connections(ctx context.Context, userID uuid.UUID) ([]connrepo.Connection, error)
	AccessToken(ctx context.Context, userID uuid.UUID, locationID string) (string, error)
}

// CampaignSource lists the user's campaigns for lead-to-campaign matching.
type CampaignSource interface {
	List(ctx context.Context, userID uuid.UUID) ([]campaignrepo.Campaign, error)
}

// CRMReader is the slice of the CRM client bulk sync reads from.
type CRMReader interface {
	Contacts(ctx context.Context, accessToken, locationID string, page, limit int) ([]highlevel.Contact, int, error)
}

// Service pulls leads from the CRM and accepts webhook pushes, upserting
// into the lead store and triggering classification passes.
type Service struct {
	repo        *Repository
	leads       LeadStore
	classifier  Classifier
	connections ConnectionSource
	campaigns   CampaignSource
	crm         CRMReader
	bus         events.Bus
	log         *logger.Logger
	pageSize    int
}

// New creates a new ingest service.
func New(repo *Repository, leads LeadStore, classifier Classifier, connections ConnectionSource,
	campaigns CampaignSource, crm CRMReader, bus events.Bus, cfg config.SyncConfig, log *logger.Logger) *Service {
	pageSize := cfg.GetSyncPageSize()
	if pageSize < 1 {
		pageSize = 100
	}
	return &Service{
		repo:        repo,
		leads:       leads,
		classifier:  classifier,
		connections: connections,
		campaigns:   campaigns,
		crm:         crm,
		bus:         bus,
		log:         log,
		pageSize:    pageSize,
	}
}

// IngestWebhook accepts one inbound lead event, upserts it, and runs a
// classification pass on the matched campaign.
func (s *Service) IngestWebhook(ctx context.Context, userID uuid.UUID, raw []byte) (leadrepo.Lead, error) {
	payload, err := ParseLeadPayload(raw)
	if err != nil {
		return leadrepo.Lead{}, apperr.BadRequest("malformed lead payload")
	}
	if payload.SourceID() == "" {
		return leadrepo.Lead{}, apperr.Validation("lead payload is missing an identifier")
	}

	campaigns, err := s.campaigns.List(ctx, userID)
	if err != nil {
		return leadrepo.Lead{}, err
	}
	campaignID := matchCampaign(campaigns, payload.Source(), payload.SourceRef())

	lead, created, err := s.upsertPayload(ctx, userID, campaignID, payload, raw)
	if err != nil {
		return leadrepo.Lead{}, err
	}

	if created {
		s.bus.Publish(ctx, events.LeadIngested{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     lead.ID,
			CampaignID: lead.CampaignID,
			LocationID: lead.LocationID,
			Source:     lead.Source,
		})
	}

	if lead.CampaignID != nil {
		if _, err := s.classifier.Reclassify(ctx, userID, *lead.CampaignID); err != nil {
			// The lead is stored; classification will catch up on the next pass.
			s.log.Error("post-webhook classification failed", "campaignId", lead.CampaignID, "error", err)
		}
	}
	return lead, nil
}

// SyncUser pulls new contacts for every connection of the user, fanned out
// per location, then reclassifies every campaign that received leads.
func (s *Service) SyncUser(ctx context.Context, userID uuid.UUID) error {
	connections, err := s.connections.Connections(ctx, userID)
	if err != nil {
		return err
	}
	campaigns, err := s.campaigns.List(ctx, userID)
	if err != nil {
		return err
	}

	touched := newCampaignSet()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)

	for _, conn := range connections {
		conn := conn
		g.Go(func() error {
			if err := s.syncLocation(gctx, userID, conn.LocationID, campaigns, touched); err != nil {
				// One failing location must not stop the others.
				s.log.SyncError(conn.LocationID, "contacts", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, campaignID := range touched.list() {
		if _, err := s.classifier.Reclassify(ctx, userID, campaignID); err != nil {
			s.log.Error("post-sync classification failed", "campaignId", campaignID, "error", err)
		}
	}
	return nil
}

// campaignSet collects campaign IDs touched by concurrent location pulls.
type campaignSet struct {
	mu  sync.Mutex
	ids map[uuid.UUID]struct{}
}

func newCampaignSet() *campaignSet {
	return &campaignSet{ids: make(map[uuid.UUID]struct{})}
}

func (s *campaignSet) add(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

func (s *campaignSet) list() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

func (s *Service) syncLocation(ctx context.Context, userID uuid.UUID, locationID string, campaigns []campaignrepo.Campaign, touched *campaignSet) error {
	token, err := s.connections.AccessToken(ctx, userID, locationID)
	if err != nil {
		return err
	}

	lastProcessed, err := s.repo.LastProcessedAt(ctx, userID, locationID)
	if err != nil {
		return err
	}

	highWater := lastProcessed
	for page := 1; ; page++ {
		contacts, total, err := s.crm.Contacts(ctx, token, locationID, page, s.pageSize)
		if err != nil {
			return err
		}

		for _, contact := range contacts {
			payload, raw := contactPayload(contact, locationID)
			eventTime := payload.EventTime()
			if eventTime != nil && !eventTime.After(lastProcessed) {
				continue
			}

			campaignID := matchCampaign(campaigns, payload.Source(), payload.SourceRef())
			lead, created, err := s.upsertPayload(ctx, userID, campaignID, payload, raw)
			if err != nil {
				s.log.Error("lead upsert failed", "sourceId", payload.SourceID(), "error", err)
				continue
			}

			if eventTime != nil && eventTime.After(highWater) {
				highWater = *eventTime
			}
			if created {
				s.bus.Publish(ctx, events.LeadIngested{
					BaseEvent:  events.NewBaseEvent(),
					LeadID:     lead.ID,
					CampaignID: lead.CampaignID,
					LocationID: locationID,
					Source:     lead.Source,
				})
			}
			if lead.CampaignID != nil {
				touched.add(*lead.CampaignID)
			}
		}

		if page*s.pageSize >= total || len(contacts) == 0 {
			break
		}
	}

	if highWater.After(lastProcessed) {
		if err := s.repo.SetLastProcessedAt(ctx, userID, locationID, highWater); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) upsertPayload(ctx context.Context, userID uuid.UUID, campaignID *uuid.UUID, payload LeadPayload, raw []byte) (leadrepo.Lead, bool, error) {
	params := leadrepo.UpsertParams{
		UserID:     userID,
		CampaignID: campaignID,
		LocationID: payload.LocationID,
		Source:     payload.Source(),
		SourceID:   payload.SourceID(),
		EventDate:  payload.EventTime(),
		RawData:    json.RawMessage(raw),
	}
	if name := payload.ContactName(); name != "" {
		params.ContactName = &name
	}
	if payload.Phone != "" {
		params.Phone = &payload.Phone
	}
	if payload.Email != "" {
		params.Email = &payload.Email
	}
	if payload.Source() == qualify.SourceCall {
		params.CallDuration = payload.CallDuration
		if payload.CallStatus != "" {
			params.CallStatus = &payload.CallStatus
		}
	}
	return s.leads.Upsert(ctx, params)
}

// matchCampaign finds the campaign bound to the lead's source resource. A
// resource binding wins over a bare source-type match.
func matchCampaign(campaigns []campaignrepo.Campaign, source, sourceRef string) *uuid.UUID {
	var typeMatch *uuid.UUID
	for i := range campaigns {
		c := &campaigns[i]
		if sourceRef != "" && containsString(boundRefs(c, source), sourceRef) {
			return &c.ID
		}
		if typeMatch == nil && containsString(c.SourceTypes, source) {
			typeMatch = &c.ID
		}
	}
	return typeMatch
}

func boundRefs(c *campaignrepo.Campaign, source string) []string {
	switch source {
	case qualify.SourceCall:
		return c.PhoneNumberIDs
	case qualify.SourceFacebook:
		return c.FacebookFormIDs
	case qualify.SourceSurvey:
		return c.SurveyIDs
	default:
		return c.FormIDs
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// contactPayload converts a bulk-pulled contact into the normalized payload
// shape, keeping the full contact as raw data.
func contactPayload(contact highlevel.Contact, locationID string) (LeadPayload, []byte) {
	raw, err := json.Marshal(contact)
	if err != nil {
		raw = []byte("{}")
	}

	payload := LeadPayload{
		Type:       contact.Source,
		ContactID:  contact.ID,
		LocationID: locationID,
		Phone:      contact.Phone,
		Email:      contact.Email,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		Name:       contact.Name,
		DateAdded:  contact.DateAdded,
	}
	return payload, raw
}

// Interval forwards the configured sync cadence for scheduling.
func Interval(cfg config.SyncConfig) time.Duration {
	interval := cfg.GetSyncInterval()
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return interval
}

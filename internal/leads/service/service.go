package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/transport"
	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

// RulesProvider supplies the qualification rules for a campaign. Implemented
// by the campaigns service.
type RulesProvider interface {
	GetRules(ctx context.Context, userID, campaignID uuid.UUID) (qualify.Rules, error)
}

// Service provides business logic for leads.
type Service struct {
	repo  repository.Repository
	rules RulesProvider
	bus   events.Bus
	log   *logger.Logger
}

// New creates a new leads service.
func New(repo repository.Repository, rules RulesProvider, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, rules: rules, bus: bus, log: log}
}

// GetByID retrieves a lead owned by the user.
func (s *Service) GetByID(ctx context.Context, userID, id uuid.UUID) (transport.LeadResponse, error) {
	l, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toResponse(l), nil
}

// List retrieves leads with filters and pagination.
func (s *Service) List(ctx context.Context, userID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	params := repository.ListParams{
		Source:         req.Source,
		ApprovalStatus: req.ApprovalStatus,
		NeedsReview:    req.NeedsReview,
		Offset:         (page - 1) * pageSize,
		Limit:          pageSize,
	}
	if req.CampaignID != "" {
		campaignID, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid campaign ID")
		}
		params.CampaignID = &campaignID
	}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid from date")
		}
		params.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid to date")
		}
		// Inclusive end of day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		params.To = &end
	}

	items, total, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	resp := transport.LeadListResponse{
		Items:    make([]transport.LeadResponse, 0, len(items)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, l := range items {
		resp.Items = append(resp.Items, toResponse(l))
	}
	return resp, nil
}

// Reclassify replays the campaign's leads through the repeat detector and
// classifier in chronological order and persists the verdicts. The pass is
// idempotent: the history store is rebuilt in memory from the lead set each
// run, so unchanged inputs produce unchanged verdicts. Leads with a manual
// approval state are re-judged in memory (their sightings still feed the
// detector) but the repository guard keeps their stored state intact.
func (s *Service) Reclassify(ctx context.Context, userID, campaignID uuid.UUID) (transport.ClassificationSummary, error) {
	rules, err := s.rules.GetRules(ctx, userID, campaignID)
	if err != nil {
		return transport.ClassificationSummary{}, err
	}

	leads, err := s.repo.ListForClassification(ctx, userID, campaignID)
	if err != nil {
		return transport.ClassificationSummary{}, err
	}

	detector := qualify.NewDetector(qualify.NewMemoryStore())
	summary := transport.ClassificationSummary{CampaignID: campaignID, Total: len(leads)}
	verdicts := make([]repository.Verdict, 0, len(leads))

	for _, l := range leads {
		var obs qualify.Observation
		timestampValid := l.EventDate != nil
		if timestampValid {
			obs, err = detector.Observe(ctx, deref(l.Phone), deref(l.Email), *l.EventDate)
			if err != nil {
				// One bad lead must not abort the batch.
				s.log.Error("repeat observation failed", "leadId", l.ID, "error", err)
				summary.Skipped++
				continue
			}
		} else {
			summary.Skipped++
		}

		res := qualify.Classify(qualify.Input{
			Source:         l.Source,
			Phone:          deref(l.Phone),
			Email:          deref(l.Email),
			Duration:       l.CallDuration,
			CallStatus:     l.CallStatus,
			CreatedAtValid: timestampValid,
		}, rules, obs)

		verdict := repository.Verdict{
			LeadID:      l.ID,
			Qualified:   res.Qualified,
			NeedsReview: res.NeedsReview,
			FirstTime:   !obs.SeenBefore,
		}
		if res.Reason != qualify.ReasonNone {
			reason := string(res.Reason)
			verdict.DisqualifyReason = &reason
		}
		verdicts = append(verdicts, verdict)

		switch {
		case res.Qualified:
			summary.Qualified++
		default:
			summary.Disqualified++
		}
		if res.NeedsReview {
			summary.Flagged++
		}

		if !res.Qualified && l.ApprovalStatus == qualify.StatusPending && verdictChanged(l, res) {
			s.bus.Publish(ctx, events.LeadAutoDisqualified{
				BaseEvent:  events.NewBaseEvent(),
				LeadID:     l.ID,
				CampaignID: l.CampaignID,
				Reason:     string(res.Reason),
			})
		}
	}

	if err := s.repo.SetVerdicts(ctx, userID, verdicts); err != nil {
		return transport.ClassificationSummary{}, err
	}

	s.log.ClassificationPass(campaignID.String(), summary.Total, summary.Qualified, summary.Disqualified, summary.Flagged)
	return summary, nil
}

// Approve records a manual approval. Manual decisions are authoritative and
// terminal; a later classification pass never reverses them.
func (s *Service) Approve(ctx context.Context, userID, id uuid.UUID) (transport.LeadResponse, error) {
	l, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	next, err := qualify.ApplyManual(l.ApprovalStatus, qualify.StatusApproved, "")
	if err != nil {
		return transport.LeadResponse{}, err
	}

	updated, err := s.repo.SetApproval(ctx, userID, id, next, nil)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadApproved{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     updated.ID,
		ApprovedBy: userID,
	})
	s.log.Info("lead approved", "id", updated.ID)
	return toResponse(updated), nil
}

// Dispute records a manual dispute with its mandatory reason.
func (s *Service) Dispute(ctx context.Context, userID, id uuid.UUID, reason string) (transport.LeadResponse, error) {
	l, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	next, err := qualify.ApplyManual(l.ApprovalStatus, qualify.StatusDisputed, reason)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	updated, err := s.repo.SetApproval(ctx, userID, id, next, &reason)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadDisputed{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     updated.ID,
		DisputedBy: userID,
		Reason:     reason,
	})
	s.log.Info("lead disputed", "id", updated.ID)
	return toResponse(updated), nil
}

// verdictChanged reports whether the new verdict differs from the stored one,
// so repeated passes over unchanged data stay quiet on the event bus.
func verdictChanged(l repository.Lead, res qualify.Result) bool {
	if l.Qualified == nil {
		return true
	}
	if *l.Qualified != res.Qualified {
		return true
	}
	return deref(l.DisqualifyReason) != string(res.Reason)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toResponse(l repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             l.ID,
		CampaignID:     l.CampaignID,
		LocationID:     l.LocationID,
		Source:         l.Source,
		SourceID:       l.SourceID,
		ContactName:    l.ContactName,
		Phone:          l.Phone,
		Email:          l.Email,
		CallDuration:   l.CallDuration,
		CallStatus:     l.CallStatus,
		Qualified:      l.Qualified,
		Reason:         l.DisqualifyReason,
		NeedsReview:    l.NeedsReview,
		ApprovalStatus: string(l.ApprovalStatus),
		DisputeReason:  l.DisputeReason,
		FirstTime:      l.FirstTime,
		EventDate:      l.EventDate,
		CreatedAt:      l.CreatedAt,
	}
}

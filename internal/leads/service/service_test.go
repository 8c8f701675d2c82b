package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/repository"
	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

type fakeRepo struct {
	leads map[uuid.UUID]repository.Lead
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeRepo) Upsert(_ context.Context, params repository.UpsertParams) (repository.Lead, bool, error) {
	for _, l := range f.leads {
		if l.UserID == params.UserID && l.Source == params.Source && l.SourceID == params.SourceID {
			return l, false, nil
		}
	}
	l := repository.Lead{
		ID:             uuid.New(),
		UserID:         params.UserID,
		CampaignID:     params.CampaignID,
		LocationID:     params.LocationID,
		Source:         params.Source,
		SourceID:       params.SourceID,
		ContactName:    params.ContactName,
		Phone:          params.Phone,
		Email:          params.Email,
		CallDuration:   params.CallDuration,
		CallStatus:     params.CallStatus,
		EventDate:      params.EventDate,
		ApprovalStatus: qualify.StatusPending,
		FirstTime:      true,
	}
	f.leads[l.ID] = l
	return l, true, nil
}

func (f *fakeRepo) GetByID(_ context.Context, userID, id uuid.UUID) (repository.Lead, error) {
	l, ok := f.leads[id]
	if !ok || l.UserID != userID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return l, nil
}

func (f *fakeRepo) List(_ context.Context, userID uuid.UUID, _ repository.ListParams) ([]repository.Lead, int, error) {
	out := make([]repository.Lead, 0)
	for _, l := range f.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListForClassification(_ context.Context, userID, campaignID uuid.UUID) ([]repository.Lead, error) {
	dated := make([]repository.Lead, 0)
	undated := make([]repository.Lead, 0)
	for _, l := range f.leads {
		if l.UserID != userID || l.CampaignID == nil || *l.CampaignID != campaignID {
			continue
		}
		if l.EventDate == nil {
			undated = append(undated, l)
		} else {
			dated = append(dated, l)
		}
	}
	for i := 0; i < len(dated); i++ {
		for j := i + 1; j < len(dated); j++ {
			if dated[j].EventDate.Before(*dated[i].EventDate) {
				dated[i], dated[j] = dated[j], dated[i]
			}
		}
	}
	return append(dated, undated...), nil
}

func (f *fakeRepo) SetVerdicts(_ context.Context, userID uuid.UUID, verdicts []repository.Verdict) error {
	for _, v := range verdicts {
		l, ok := f.leads[v.LeadID]
		if !ok || l.UserID != userID || l.ApprovalStatus != qualify.StatusPending {
			continue
		}
		q := v.Qualified
		l.Qualified = &q
		l.DisqualifyReason = v.DisqualifyReason
		l.NeedsReview = v.NeedsReview
		l.FirstTime = v.FirstTime
		f.leads[v.LeadID] = l
	}
	return nil
}

func (f *fakeRepo) SetApproval(_ context.Context, userID, id uuid.UUID, status qualify.ApprovalStatus, disputeReason *string) (repository.Lead, error) {
	l, ok := f.leads[id]
	if !ok || l.UserID != userID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	l.ApprovalStatus = status
	l.DisputeReason = disputeReason
	l.NeedsReview = false
	f.leads[id] = l
	return l, nil
}

var _ repository.Repository = (*fakeRepo)(nil)

type fixedRules struct{ rules qualify.Rules }

func (f fixedRules) GetRules(_ context.Context, _, _ uuid.UUID) (qualify.Rules, error) {
	return f.rules, nil
}

func newTestService(rules qualify.Rules) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	return New(repo, fixedRules{rules: rules}, bus, log), repo
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func addCallLead(t *testing.T, repo *fakeRepo, userID uuid.UUID, campaignID uuid.UUID, sourceID, phone string, duration int, eventDate *time.Time) repository.Lead {
	t.Helper()
	l, _, err := repo.Upsert(context.Background(), repository.UpsertParams{
		UserID:       userID,
		CampaignID:   &campaignID,
		LocationID:   "loc_1",
		Source:       qualify.SourceCall,
		SourceID:     sourceID,
		Phone:        strPtr(phone),
		CallDuration: intPtr(duration),
		CallStatus:   strPtr("answered"),
		EventDate:    eventDate,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	return l
}

func datePtr(t time.Time) *time.Time { return &t }

func TestReclassifyRepeatWindow(t *testing.T) {
	svc, repo := newTestService(qualify.DefaultRules())
	userID := uuid.New()
	campaignID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := addCallLead(t, repo, userID, campaignID, "c1", "+12025550123", 60, datePtr(base))
	repeat := addCallLead(t, repo, userID, campaignID, "c2", "+12025550123", 60, datePtr(base.AddDate(0, 0, 10)))
	outside := addCallLead(t, repo, userID, campaignID, "c3", "+12025550123", 60, datePtr(base.AddDate(0, 0, 45)))

	summary, err := svc.Reclassify(context.Background(), userID, campaignID)
	if err != nil {
		t.Fatalf("Reclassify: %v", err)
	}
	if summary.Total != 3 || summary.Qualified != 2 || summary.Disqualified != 1 || summary.Flagged != 1 {
		t.Errorf("summary = %+v", summary)
	}

	got := repo.leads[first.ID]
	if got.Qualified == nil || !*got.Qualified || !got.FirstTime {
		t.Errorf("first contact: %+v", got)
	}

	got = repo.leads[repeat.ID]
	if got.Qualified == nil || *got.Qualified {
		t.Error("repeat inside window should be disqualified")
	}
	if deref(got.DisqualifyReason) != string(qualify.ReasonRepeatContact) || !got.NeedsReview {
		t.Errorf("repeat verdict: reason=%v needsReview=%v", deref(got.DisqualifyReason), got.NeedsReview)
	}
	if got.ApprovalStatus != qualify.StatusPending {
		t.Errorf("repeat must stay pending, got %s", got.ApprovalStatus)
	}

	// 35 whole days since the previous sighting at day 10, outside the
	// 30-day window even though only 45 days from the first contact.
	got = repo.leads[outside.ID]
	if got.Qualified == nil || !*got.Qualified {
		t.Error("contact outside window should qualify")
	}
	if got.FirstTime {
		t.Error("contact outside window is still not first-time")
	}
}

func TestReclassifyIdempotent(t *testing.T) {
	svc, repo := newTestService(qualify.DefaultRules())
	userID := uuid.New()
	campaignID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	addCallLead(t, repo, userID, campaignID, "c1", "+12025550123", 60, datePtr(base))
	addCallLead(t, repo, userID, campaignID, "c2", "+12025550123", 60, datePtr(base.AddDate(0, 0, 10)))

	first, err := svc.Reclassify(context.Background(), userID, campaignID)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := svc.Reclassify(context.Background(), userID, campaignID)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if first != second {
		t.Errorf("passes differ: %+v vs %+v", first, second)
	}
}

func TestReclassifyNeverOverwritesManualDecision(t *testing.T) {
	svc, repo := newTestService(qualify.DefaultRules())
	userID := uuid.New()
	campaignID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Too short, would be auto-disqualified.
	short := addCallLead(t, repo, userID, campaignID, "c1", "+12025550123", 5, datePtr(base))

	if _, err := svc.Approve(context.Background(), userID, short.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if _, err := svc.Reclassify(context.Background(), userID, campaignID); err != nil {
		t.Fatalf("Reclassify: %v", err)
	}

	got := repo.leads[short.ID]
	if got.ApprovalStatus != qualify.StatusApproved {
		t.Errorf("manual approval overwritten: %s", got.ApprovalStatus)
	}
	if got.Qualified != nil {
		t.Error("verdict written despite manual approval")
	}
}

func TestReclassifyMalformedTimestampFlagsAndContinues(t *testing.T) {
	svc, repo := newTestService(qualify.DefaultRules())
	userID := uuid.New()
	campaignID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	broken := addCallLead(t, repo, userID, campaignID, "c1", "+12025550123", 60, nil)
	ok := addCallLead(t, repo, userID, campaignID, "c2", "+13105550188", 60, datePtr(base))

	summary, err := svc.Reclassify(context.Background(), userID, campaignID)
	if err != nil {
		t.Fatalf("Reclassify: %v", err)
	}
	if summary.Total != 2 || summary.Skipped != 1 {
		t.Errorf("summary = %+v", summary)
	}

	got := repo.leads[broken.ID]
	if !got.NeedsReview {
		t.Error("lead with unparseable timestamp must be flagged for review")
	}
	if got.Qualified == nil || !*got.Qualified {
		t.Error("lead is still judged on the remaining rules")
	}

	got = repo.leads[ok.ID]
	if got.Qualified == nil || !*got.Qualified {
		t.Error("batch must continue past the malformed lead")
	}
}

func TestDisputeRequiresReason(t *testing.T) {
	svc, repo := newTestService(qualify.DefaultRules())
	userID := uuid.New()
	campaignID := uuid.New()

	l := addCallLead(t, repo, userID, campaignID, "c1", "+12025550123", 60, datePtr(time.Now()))

	if _, err := svc.Dispute(context.Background(), userID, l.ID, ""); apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}

	resp, err := svc.Dispute(context.Background(), userID, l.ID, "not a real inquiry")
	if err != nil {
		t.Fatalf("Dispute: %v", err)
	}
	if resp.ApprovalStatus != string(qualify.StatusDisputed) || deref(resp.DisputeReason) != "not a real inquiry" {
		t.Errorf("dispute not recorded: %+v", resp)
	}
}

package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns/repository"
	"github.com/summitwebteam/lead-fire-cursor/internal/campaigns/transport"
	"github.com/summitwebteam/lead-fire-cursor/internal/events"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"
	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
	"github.com/summitwebteam/lead-fire-cursor/platform/logger"
)

type fakeRepo struct {
	campaigns map[uuid.UUID]repository.Campaign
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{campaigns: make(map[uuid.UUID]repository.Campaign)}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Campaign, error) {
	c := repository.Campaign{
		ID:              uuid.New(),
		UserID:          params.UserID,
		Name:            params.Name,
		Description:     params.Description,
		Status:          "active",
		SourceTypes:     params.SourceTypes,
		PhoneNumberIDs:  params.PhoneNumberIDs,
		FormIDs:         params.FormIDs,
		FacebookFormIDs: params.FacebookFormIDs,
		SurveyIDs:       params.SurveyIDs,
	}
	f.campaigns[c.ID] = c
	return c, nil
}

func (f *fakeRepo) GetByID(_ context.Context, userID, id uuid.UUID) (repository.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok || c.UserID != userID {
		return repository.Campaign{}, apperr.NotFound("campaign not found")
	}
	return c, nil
}

func (f *fakeRepo) List(_ context.Context, userID uuid.UUID) ([]repository.Campaign, error) {
	out := make([]repository.Campaign, 0)
	for _, c := range f.campaigns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, userID, id uuid.UUID, params repository.UpdateParams) (repository.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok || c.UserID != userID {
		return repository.Campaign{}, apperr.NotFound("campaign not found")
	}
	if params.Name != nil {
		c.Name = *params.Name
	}
	if params.Status != nil {
		c.Status = *params.Status
	}
	if params.SourceTypes != nil {
		c.SourceTypes = params.SourceTypes
	}
	if params.PhoneNumberIDs != nil {
		c.PhoneNumberIDs = params.PhoneNumberIDs
	}
	if params.FormIDs != nil {
		c.FormIDs = params.FormIDs
	}
	if params.FacebookFormIDs != nil {
		c.FacebookFormIDs = params.FacebookFormIDs
	}
	if params.SurveyIDs != nil {
		c.SurveyIDs = params.SurveyIDs
	}
	f.campaigns[id] = c
	return c, nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	c, ok := f.campaigns[id]
	if !ok || c.UserID != userID {
		return apperr.NotFound("campaign not found")
	}
	delete(f.campaigns, id)
	return nil
}

func (f *fakeRepo) UpdateRules(_ context.Context, userID, id uuid.UUID, rules qualify.Rules) (repository.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok || c.UserID != userID {
		return repository.Campaign{}, apperr.NotFound("campaign not found")
	}
	c.FilterRules = &rules
	f.campaigns[id] = c
	return c, nil
}

var _ repository.Repository = (*fakeRepo)(nil)

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	return New(repo, bus, log), repo
}

func TestCreateDerivesSourceTypes(t *testing.T) {
	tests := []struct {
		name string
		req  transport.CreateCampaignRequest
		want []string
	}{
		{
			name: "phone numbers imply call",
			req:  transport.CreateCampaignRequest{Name: "calls", PhoneNumberIDs: []string{"pn_1"}},
			want: []string{"call"},
		},
		{
			name: "forms imply form",
			req:  transport.CreateCampaignRequest{Name: "forms", FormIDs: []string{"f_1"}},
			want: []string{"form"},
		},
		{
			name: "mixed sources",
			req: transport.CreateCampaignRequest{
				Name:            "mixed",
				PhoneNumberIDs:  []string{"pn_1"},
				FacebookFormIDs: []string{"fb_1"},
				SurveyIDs:       []string{"sv_1"},
			},
			want: []string{"call", "facebook", "survey"},
		},
		{
			name: "no tracked ids defaults to form",
			req:  transport.CreateCampaignRequest{Name: "empty"},
			want: []string{"form"},
		},
		{
			name: "explicit types are kept",
			req:  transport.CreateCampaignRequest{Name: "explicit", SourceTypes: []string{"survey"}, PhoneNumberIDs: []string{"pn_1"}},
			want: []string{"survey"},
		},
	}

	svc, _ := newTestService()
	userID := uuid.New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Create(context.Background(), userID, tt.req)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if !reflect.DeepEqual(resp.SourceTypes, tt.want) {
				t.Errorf("SourceTypes = %v, want %v", resp.SourceTypes, tt.want)
			}
		})
	}
}

func TestUpdateRederivesSourceTypesWhenIDsChange(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, transport.CreateCampaignRequest{
		Name:    "forms",
		FormIDs: []string{"f_1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), userID, created.ID, transport.UpdateCampaignRequest{
		PhoneNumberIDs: []string{"pn_1"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := []string{"call", "form"}
	if !reflect.DeepEqual(updated.SourceTypes, want) {
		t.Errorf("SourceTypes = %v, want %v", updated.SourceTypes, want)
	}
}

func TestGetRulesDefaultsWhenNoneSaved(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, transport.CreateCampaignRequest{Name: "new"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rules, err := svc.GetRules(context.Background(), userID, created.ID)
	if err != nil {
		t.Fatalf("GetRules: %v", err)
	}
	if !reflect.DeepEqual(rules, qualify.DefaultRules()) {
		t.Errorf("rules = %+v, want defaults", rules)
	}
}

func TestUpdateRulesRejectsInvalidWindow(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, transport.CreateCampaignRequest{
		Name:           "calls",
		PhoneNumberIDs: []string{"pn_1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.UpdateRules(context.Background(), userID, created.ID, transport.UpdateRulesRequest{
		MinCallDuration:      30,
		CallTypes:            []string{"answered"},
		RequirePhone:         true,
		ExcludeRepeatCallers: true,
		RepeatThresholdDays:  45,
	})
	if err == nil {
		t.Fatal("expected validation error for unsupported window")
	}
}

func TestUpdateRulesPersists(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, transport.CreateCampaignRequest{
		Name:           "calls",
		PhoneNumberIDs: []string{"pn_1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rules, err := svc.UpdateRules(context.Background(), userID, created.ID, transport.UpdateRulesRequest{
		MinCallDuration:      60,
		CallTypes:            []string{"answered", "voicemail"},
		RequirePhone:         true,
		ExcludeRepeatCallers: true,
		RepeatThresholdDays:  60,
	})
	if err != nil {
		t.Fatalf("UpdateRules: %v", err)
	}
	if rules.MinCallDuration != 60 || rules.RepeatThresholdDays != 60 {
		t.Errorf("unexpected rules after update: %+v", rules)
	}

	stored := repo.campaigns[created.ID]
	if stored.FilterRules == nil || stored.FilterRules.MinCallDuration != 60 {
		t.Errorf("rules not persisted: %+v", stored.FilterRules)
	}
}

func TestUserScoping(t *testing.T) {
	svc, _ := newTestService()
	owner := uuid.New()
	stranger := uuid.New()

	created, err := svc.Create(context.Background(), owner, transport.CreateCampaignRequest{Name: "mine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), stranger, created.ID); apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("expected not found for other user, got %v", err)
	}
	if err := svc.Delete(context.Background(), stranger, created.ID); apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("expected not found deleting as other user, got %v", err)
	}
}

package exports

import (
	"testing"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"
	"github.com/summitwebteam/lead-fire-cursor/internal/leads/repository"
)

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestLeadRow(t *testing.T) {
	date := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	lead := repository.Lead{
		ContactName:    strPtr("Ada Lovelace"),
		Email:          strPtr("ada@example.com"),
		Phone:          strPtr("+12025550123"),
		Source:         "call",
		EventDate:      &date,
		Qualified:      boolPtr(true),
		ApprovalStatus: qualify.StatusPending,
	}

	row := leadRow(lead)
	want := []string{"Ada Lovelace", "ada@example.com", "+12025550123", "call", "2026-03-15", "qualified"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestLeadRowMissingFields(t *testing.T) {
	row := leadRow(repository.Lead{Source: "form", ApprovalStatus: qualify.StatusPending})
	want := []string{"", "", "", "form", "", "pending"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestLeadStatusManualStateWins(t *testing.T) {
	tests := []struct {
		name string
		lead repository.Lead
		want string
	}{
		{"approved beats disqualified", repository.Lead{Qualified: boolPtr(false), ApprovalStatus: qualify.StatusApproved}, "approved"},
		{"disputed beats qualified", repository.Lead{Qualified: boolPtr(true), ApprovalStatus: qualify.StatusDisputed}, "disputed"},
		{"unjudged is pending", repository.Lead{ApprovalStatus: qualify.StatusPending}, "pending"},
		{"disqualified", repository.Lead{Qualified: boolPtr(false), ApprovalStatus: qualify.StatusPending}, "disqualified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := leadStatus(tt.lead); got != tt.want {
				t.Errorf("leadStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

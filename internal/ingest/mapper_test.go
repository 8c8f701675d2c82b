package ingest

import (
	"testing"
	"time"
)

func TestLeadPayloadSource(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"call", "call"},
		{"InboundCall", "call"},
		{"facebook", "facebook"},
		{"facebook_lead", "facebook"},
		{"survey", "survey"},
		{"form", "form"},
		{"", "form"},
		{"something-else", "form"},
	}
	for _, tt := range tests {
		if got := (LeadPayload{Type: tt.typ}).Source(); got != tt.want {
			t.Errorf("Source(%q) = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func TestLeadPayloadContactName(t *testing.T) {
	tests := []struct {
		name    string
		payload LeadPayload
		want    string
	}{
		{"full name wins", LeadPayload{FullName: "Ada Lovelace", FirstName: "Ada"}, "Ada Lovelace"},
		{"name next", LeadPayload{Name: "Ada L", LastName: "Lovelace"}, "Ada L"},
		{"first and last combined", LeadPayload{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first only", LeadPayload{FirstName: "Ada"}, "Ada"},
		{"last only", LeadPayload{LastName: "Lovelace"}, "Lovelace"},
		{"nothing", LeadPayload{}, ""},
		{"whitespace trimmed", LeadPayload{FirstName: " Ada ", LastName: " "}, "Ada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.payload.ContactName(); got != tt.want {
				t.Errorf("ContactName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLeadPayloadEventTime(t *testing.T) {
	p := LeadPayload{DateAdded: "2026-03-01T12:30:00Z"}
	got := p.EventTime()
	if got == nil {
		t.Fatal("expected parsed time")
	}
	want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EventTime() = %v, want %v", got, want)
	}

	// Timestamp field takes precedence over dateAdded.
	p = LeadPayload{Timestamp: "2026-04-01", DateAdded: "2026-03-01T12:30:00Z"}
	if got := p.EventTime(); got == nil || got.Month() != time.April {
		t.Errorf("EventTime() = %v, want April date", got)
	}

	// Malformed timestamps come back nil, never an error.
	for _, bad := range []string{"not-a-date", "03/01/2026", ""} {
		if got := (LeadPayload{DateAdded: bad}).EventTime(); got != nil {
			t.Errorf("EventTime(%q) = %v, want nil", bad, got)
		}
	}
}

func TestParseLeadPayloadRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseLeadPayload([]byte(`{"type":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}

	p, err := ParseLeadPayload([]byte(`{"type":"call","id":"ev_1","phone":"+12025550123","callDuration":45,"callStatus":"answered"}`))
	if err != nil {
		t.Fatalf("ParseLeadPayload: %v", err)
	}
	if p.SourceID() != "ev_1" || p.CallDuration == nil || *p.CallDuration != 45 {
		t.Errorf("payload = %+v", p)
	}
}

func TestSourceRefFollowsSource(t *testing.T) {
	p := LeadPayload{Type: "call", PhoneNumberID: "pn_1", FormID: "f_1", SurveyID: "sv_1"}
	if got := p.SourceRef(); got != "pn_1" {
		t.Errorf("call SourceRef = %s", got)
	}
	p.Type = "survey"
	if got := p.SourceRef(); got != "sv_1" {
		t.Errorf("survey SourceRef = %s", got)
	}
	p.Type = "form"
	if got := p.SourceRef(); got != "f_1" {
		t.Errorf("form SourceRef = %s", got)
	}
}

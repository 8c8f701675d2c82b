package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/summitwebteam/lead-fire-cursor/internal/leads/qualify"
)

// LeadPayload is the normalized shape of an inbound lead event, from either
// the webhook path or a bulk pull. Unknown fields stay in the raw document.
type LeadPayload struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	ContactID     string `json:"contactId"`
	LocationID    string `json:"locationId"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Name          string `json:"name"`
	FullName      string `json:"fullName"`
	CallDuration  *int   `json:"callDuration"`
	CallStatus    string `json:"callStatus"`
	PhoneNumberID string `json:"phoneNumberId"`
	FormID        string `json:"formId"`
	SurveyID      string `json:"surveyId"`
	DateAdded     string `json:"dateAdded"`
	Timestamp     string `json:"timestamp"`
}

// ParseLeadPayload decodes an inbound lead document.
func ParseLeadPayload(raw []byte) (LeadPayload, error) {
	var p LeadPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return LeadPayload{}, err
	}
	return p, nil
}

// SourceID returns the stable identifier used for lead deduplication.
func (p LeadPayload) SourceID() string {
	if p.ID != "" {
		return p.ID
	}
	return p.ContactID
}

// Source normalizes the payload's event type to a lead source.
func (p LeadPayload) Source() string {
	switch strings.ToLower(p.Type) {
	case "call", "inboundcall", "outboundcall":
		return qualify.SourceCall
	case "facebook", "facebook_lead", "fb":
		return qualify.SourceFacebook
	case "survey":
		return qualify.SourceSurvey
	default:
		return qualify.SourceForm
	}
}

// SourceRef returns the bound CRM resource ID the event came through, used
// to match the lead to a campaign.
func (p LeadPayload) SourceRef() string {
	switch p.Source() {
	case qualify.SourceCall:
		return p.PhoneNumberID
	case qualify.SourceSurvey:
		return p.SurveyID
	default:
		return p.FormID
	}
}

// ContactName assembles a display name from whichever name fields the source
// populated.
func (p LeadPayload) ContactName() string {
	if full := strings.TrimSpace(p.FullName); full != "" {
		return full
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	combined := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	return combined
}

// EventTime parses the event timestamp. Returns nil when every candidate
// field is absent or malformed; such leads are flagged for review downstream
// rather than dropped.
func (p LeadPayload) EventTime() *time.Time {
	for _, candidate := range []string{p.Timestamp, p.DateAdded} {
		if t := parseEventTime(candidate); t != nil {
			return t
		}
	}
	return nil
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseEventTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

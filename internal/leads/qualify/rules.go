// Package qualify implements the lead qualification engine: the tunable rule
// configuration, the repeat-contact detector, and the classifier that turns a
// lead into a qualification verdict. The package is pure computation over
// already-fetched data; persistence and transport live in the surrounding
// leads module.
package qualify

import (
	"github.com/summitwebteam/lead-fire-cursor/platform/apperr"
)

// Source kinds a lead can originate from.
const (
	SourceCall     = "call"
	SourceForm     = "form"
	SourceFacebook = "facebook"
	SourceSurvey   = "survey"
)

// Call outcome types recognized by the call rules.
const (
	CallAnswered  = "answered"
	CallMissed    = "missed"
	CallVoicemail = "voicemail"
)

// repeatWindowChoices is the closed set of lookback windows the settings form
// offers. Free-form windows are rejected.
var repeatWindowChoices = map[int]bool{7: true, 14: true, 30: true, 60: true, 90: true}

// maxCallDuration is the upper bound of the settings slider, in seconds.
const maxCallDuration = 120

// Rules holds the per-campaign qualification thresholds.
// The JSON field names match the filter_rules payload stored on a campaign.
type Rules struct {
	MinCallDuration      int      `json:"minCallDuration"`
	CallTypes            []string `json:"callTypes"`
	RequireEmail         bool     `json:"requireEmail"`
	RequirePhone         bool     `json:"requirePhone"`
	ExcludeRepeatCallers bool     `json:"excludeRepeatCallers"`
	RepeatThresholdDays  int      `json:"repeatThresholdDays"`
}

// DefaultRules returns the documented fallback configuration, used whenever a
// campaign has no stored rules: 30s minimum duration, answered calls only,
// phone required, email optional, repeat exclusion on with a 30-day window.
func DefaultRules() Rules {
	return Rules{
		MinCallDuration:      30,
		CallTypes:            []string{CallAnswered},
		RequireEmail:         false,
		RequirePhone:         true,
		ExcludeRepeatCallers: true,
		RepeatThresholdDays:  30,
	}
}

// Validate checks the rules against the constraints the settings form
// enforces. callActive reports whether the campaign has the "call" source
// enabled; when it does, at least one call outcome type must stay selected.
func (r Rules) Validate(callActive bool) error {
	if r.MinCallDuration < 0 || r.MinCallDuration > maxCallDuration {
		return apperr.Validation("minimum call duration must be between 0 and 120 seconds")
	}
	if !repeatWindowChoices[r.RepeatThresholdDays] {
		return apperr.Validation("repeat threshold must be one of 7, 14, 30, 60 or 90 days")
	}
	for _, ct := range r.CallTypes {
		switch ct {
		case CallAnswered, CallMissed, CallVoicemail:
		default:
			return apperr.Validation("unknown call type: " + ct)
		}
	}
	if callActive && len(r.CallTypes) == 0 {
		return apperr.Validation("at least one call type must be selected for call campaigns")
	}
	return nil
}

// AcceptsCallType reports whether the given call outcome is in the accepted set.
func (r Rules) AcceptsCallType(callType string) bool {
	for _, ct := range r.CallTypes {
		if ct == callType {
			return true
		}
	}
	return false
}

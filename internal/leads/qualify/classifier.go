package qualify

// Reason identifies which rule disqualified a lead.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonCallTooShort     Reason = "call_too_short"
	ReasonMissingDuration  Reason = "missing_duration"
	ReasonCallTypeExcluded Reason = "call_type_excluded"
	ReasonMissingOutcome   Reason = "missing_outcome"
	ReasonMissingEmail     Reason = "missing_email"
	ReasonMissingPhone     Reason = "missing_phone"
	ReasonRepeatContact    Reason = "repeat_contact"
)

// Input is the subset of a lead the classifier inspects. The leads service
// maps its persisted lead rows onto this type before classification.
type Input struct {
	Source     string
	Phone      string
	Email      string
	Duration   *int    // seconds, call leads only
	CallStatus *string // answered/missed/voicemail, call leads only

	// CreatedAtValid is false when the lead's creation timestamp could not be
	// parsed. Such leads are excluded from repeat comparison upstream and are
	// flagged for manual review here.
	CreatedAtValid bool
}

// Result is the classifier's tagged verdict for a single lead.
type Result struct {
	// Qualified is the automatic verdict.
	Qualified bool
	// Reason is set when Qualified is false.
	Reason Reason
	// NeedsReview marks leads the system declines to judge on its own: repeat
	// contacts inside the exclusion window and leads with unparseable
	// timestamps. The approval status stays pending so a human decides.
	NeedsReview bool
}

// Classify evaluates a lead against the rule configuration and the repeat
// detector's observation. Rules are checked in order with the first failure
// winning, except that a repeat inside the window dominates every other rule:
// a repeat is not necessarily a bad lead, only one requiring human judgment,
// so it is flagged for review rather than auto-disputed.
func Classify(in Input, rules Rules, obs Observation) Result {
	if rules.ExcludeRepeatCallers && obs.SeenBefore && obs.DaysSince <= rules.RepeatThresholdDays {
		return Result{Qualified: false, Reason: ReasonRepeatContact, NeedsReview: true}
	}

	needsReview := !in.CreatedAtValid

	if in.Source == SourceCall {
		if in.Duration == nil {
			return Result{Qualified: false, Reason: ReasonMissingDuration, NeedsReview: needsReview}
		}
		if *in.Duration < rules.MinCallDuration {
			return Result{Qualified: false, Reason: ReasonCallTooShort, NeedsReview: needsReview}
		}
		// A call with a duration but no recorded outcome fails conservatively.
		if in.CallStatus == nil || *in.CallStatus == "" {
			return Result{Qualified: false, Reason: ReasonMissingOutcome, NeedsReview: needsReview}
		}
		if !rules.AcceptsCallType(*in.CallStatus) {
			return Result{Qualified: false, Reason: ReasonCallTypeExcluded, NeedsReview: needsReview}
		}
	}

	if rules.RequireEmail && in.Email == "" {
		return Result{Qualified: false, Reason: ReasonMissingEmail, NeedsReview: needsReview}
	}
	if rules.RequirePhone && in.Phone == "" {
		return Result{Qualified: false, Reason: ReasonMissingPhone, NeedsReview: needsReview}
	}

	return Result{Qualified: true, NeedsReview: needsReview}
}

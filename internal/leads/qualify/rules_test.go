package qualify

import "testing"

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()

	if r.MinCallDuration != 30 {
		t.Errorf("MinCallDuration = %d, want 30", r.MinCallDuration)
	}
	if len(r.CallTypes) != 1 || r.CallTypes[0] != CallAnswered {
		t.Errorf("CallTypes = %v, want [answered]", r.CallTypes)
	}
	if r.RequireEmail {
		t.Error("email must be optional by default")
	}
	if !r.RequirePhone {
		t.Error("phone must be required by default")
	}
	if !r.ExcludeRepeatCallers || r.RepeatThresholdDays != 30 {
		t.Errorf("repeat exclusion default = (%v, %d), want (true, 30)", r.ExcludeRepeatCallers, r.RepeatThresholdDays)
	}
	if err := r.Validate(true); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestRulesValidate(t *testing.T) {
	cases := []struct {
		name       string
		mutate     func(*Rules)
		callActive bool
		wantErr    bool
	}{
		{"valid defaults", func(r *Rules) {}, true, false},
		{"duration below range", func(r *Rules) { r.MinCallDuration = -1 }, true, true},
		{"duration above range", func(r *Rules) { r.MinCallDuration = 121 }, true, true},
		{"duration at upper bound", func(r *Rules) { r.MinCallDuration = 120 }, true, false},
		{"window outside the enumerated set", func(r *Rules) { r.RepeatThresholdDays = 45 }, true, true},
		{"window at smallest choice", func(r *Rules) { r.RepeatThresholdDays = 7 }, true, false},
		{"unknown call type", func(r *Rules) { r.CallTypes = []string{"dropped"} }, true, true},
		{"no call types on a call campaign", func(r *Rules) { r.CallTypes = nil }, true, true},
		{"no call types on a form-only campaign", func(r *Rules) { r.CallTypes = nil }, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := DefaultRules()
			tc.mutate(&r)
			err := r.Validate(tc.callActive)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

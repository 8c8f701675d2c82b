package qualify

import "testing"

func TestApplyManual(t *testing.T) {
	cases := []struct {
		name    string
		current ApprovalStatus
		next    ApprovalStatus
		reason  string
		want    ApprovalStatus
		wantErr bool
	}{
		{"approve pending", StatusPending, StatusApproved, "", StatusApproved, false},
		{"dispute pending with reason", StatusPending, StatusDisputed, "wrong number", StatusDisputed, false},
		{"dispute without reason rejected", StatusPending, StatusDisputed, "", StatusPending, true},
		{"re-approve is idempotent", StatusApproved, StatusApproved, "", StatusApproved, false},
		{"manual flip approved to disputed", StatusApproved, StatusDisputed, "duplicate billing", StatusDisputed, false},
		{"manual flip disputed to approved", StatusDisputed, StatusApproved, "", StatusApproved, false},
		{"pending is not a manual target", StatusApproved, StatusPending, "", StatusApproved, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyManual(tc.current, tc.next, tc.reason)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("status = %q, want %q", got, tc.want)
			}
		})
	}
}

// A human decision is terminal: no automatic pass, whatever its verdict, may
// move the lead out of approved or disputed.
func TestApplyAutomaticNeverRegressesManualOverride(t *testing.T) {
	for _, terminal := range []ApprovalStatus{StatusApproved, StatusDisputed} {
		if got := ApplyAutomatic(terminal); got != terminal {
			t.Errorf("ApplyAutomatic(%q) = %q, want unchanged", terminal, got)
		}
	}

	if got := ApplyAutomatic(StatusPending); got != StatusPending {
		t.Errorf("ApplyAutomatic(pending) = %q, want pending", got)
	}
}

func TestApprovalStatusValid(t *testing.T) {
	for _, s := range []ApprovalStatus{StatusPending, StatusApproved, StatusDisputed} {
		if !s.Valid() {
			t.Errorf("%q must be valid", s)
		}
	}
	if ApprovalStatus("rejected").Valid() {
		t.Error("unknown status must be invalid")
	}
}

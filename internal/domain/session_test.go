package domain

import (
	"reflect"
	"testing"
)

func TestFactLedgerAddDeduplicates(t *testing.T) {
	ledger := NewFactLedger()

	added := ledger.Add(RoleJobSeeker, []string{
		"The candidate has 5 years of experience.",
		"The candidate prefers remote work.",
	})
	if added != 2 {
		t.Fatalf("Expected 2 facts added, got %d", added)
	}

	// Re-adding an existing fact is a no-op.
	added = ledger.Add(RoleJobSeeker, []string{"The candidate has 5 years of experience."})
	if added != 0 {
		t.Errorf("Expected duplicate fact to be skipped, got %d added", added)
	}
	if len(ledger.Facts(RoleJobSeeker)) != 2 {
		t.Errorf("Expected ledger size 2, got %d", len(ledger.Facts(RoleJobSeeker)))
	}
}

func TestFactLedgerPreservesInsertionOrder(t *testing.T) {
	ledger := NewFactLedger()
	ledger.Add(RoleRecruiter, []string{"The company offers equity."})
	ledger.Add(RoleRecruiter, []string{"The role is hybrid.", "The company offers equity."})

	want := []string{"The company offers equity.", "The role is hybrid."}
	if got := ledger.Facts(RoleRecruiter); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFactLedgerRolesIndependent(t *testing.T) {
	ledger := NewFactLedger()
	ledger.Add(RoleJobSeeker, []string{"Compensation matters."})
	ledger.Add(RoleRecruiter, []string{"Compensation matters."})

	if len(ledger.Facts(RoleJobSeeker)) != 1 || len(ledger.Facts(RoleRecruiter)) != 1 {
		t.Errorf("Expected the same fact to be tracked independently per role")
	}
}

func TestRecentExchangesBoundsAndOrder(t *testing.T) {
	s := &Session{ID: "s1", Role: RoleJobSeeker}
	for _, content := range []string{"a", "b", "c", "d"} {
		s.AppendMessage(RoleJobSeeker, "seeker "+content)
		s.AppendMessage(RoleRecruiter, "recruiter "+content)
	}

	window := s.RecentExchanges(3)

	wantSeeker := []string{"seeker b", "seeker c", "seeker d"}
	if !reflect.DeepEqual(window.JobSeeker, wantSeeker) {
		t.Errorf("Expected seeker window %v, got %v", wantSeeker, window.JobSeeker)
	}
	wantRecruiter := []string{"recruiter b", "recruiter c", "recruiter d"}
	if !reflect.DeepEqual(window.Recruiter, wantRecruiter) {
		t.Errorf("Expected recruiter window %v, got %v", wantRecruiter, window.Recruiter)
	}
}

func TestRecentExchangesShortHistory(t *testing.T) {
	s := &Session{ID: "s1", Role: RoleRecruiter}
	s.AppendMessage(RoleRecruiter, "hello")

	window := s.RecentExchanges(3)
	if len(window.JobSeeker) != 0 {
		t.Errorf("Expected empty seeker window, got %v", window.JobSeeker)
	}
	if !reflect.DeepEqual(window.Recruiter, []string{"hello"}) {
		t.Errorf("Expected recruiter window [hello], got %v", window.Recruiter)
	}
}

func TestRoleOpponent(t *testing.T) {
	if RoleJobSeeker.Opponent() != RoleRecruiter {
		t.Errorf("Expected job_seeker opponent to be recruiter")
	}
	if RoleRecruiter.Opponent() != RoleJobSeeker {
		t.Errorf("Expected recruiter opponent to be job_seeker")
	}
}

func TestSessionValidate(t *testing.T) {
	valid := &Session{ID: "s1", Role: RoleJobSeeker, Facts: NewFactLedger()}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid session, got %v", err)
	}

	cases := []struct {
		name    string
		session Session
	}{
		{"empty id", Session{Role: RoleJobSeeker}},
		{"unknown role", Session{ID: "s1", Role: "candidate"}},
		{"unknown message role", Session{ID: "s1", Role: RoleRecruiter, Messages: []Message{{Role: "hr", Content: "hi"}}}},
		{"unknown ledger role", Session{ID: "s1", Role: RoleRecruiter, Facts: FactLedger{"candidate": nil}}},
	}
	for _, tc := range cases {
		if err := tc.session.Validate(); err == nil {
			t.Errorf("Expected %s to fail validation", tc.name)
		}
	}
}

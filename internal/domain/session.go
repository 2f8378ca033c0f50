package domain

import (
	"fmt"
	"time"
)

// SeekerRange holds the job seeker's three-point salary expectations.
type SeekerRange struct {
	Min    float64 `json:"min"`
	Target float64 `json:"target"`
	Max    float64 `json:"max"`
}

// RecruiterRange holds the company's hidden budget for the position.
type RecruiterRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Message is a single entry in the negotiation transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FactLedger accumulates extracted fact sentences per role. Facts are
// append-only and deduplicated by exact string equality.
type FactLedger map[Role][]string

// NewFactLedger returns a ledger with empty lists for both roles.
func NewFactLedger() FactLedger {
	return FactLedger{
		RoleJobSeeker: []string{},
		RoleRecruiter: []string{},
	}
}

// Add appends each fact that is not already present in the role's list,
// preserving insertion order. It returns the number of facts added.
func (l FactLedger) Add(role Role, facts []string) int {
	added := 0
	for _, fact := range facts {
		if l.contains(role, fact) {
			continue
		}
		l[role] = append(l[role], fact)
		added++
	}
	return added
}

// Facts returns the accumulated facts for a role in insertion order.
func (l FactLedger) Facts(role Role) []string {
	return l[role]
}

func (l FactLedger) contains(role Role, fact string) bool {
	for _, existing := range l[role] {
		if existing == fact {
			return true
		}
	}
	return false
}

// ExchangeWindow holds the most recent messages from each party in
// chronological order. It only bounds prompt size.
type ExchangeWindow struct {
	JobSeeker []string
	Recruiter []string
}

// Session is one negotiation between a human-played role and an agent-played
// role. Ranges are fixed at creation; facts and messages grow with each turn.
type Session struct {
	ID             string         `json:"session_id"`
	Role           Role           `json:"role"`
	JobTitle       string         `json:"job_title"`
	SeekerRange    SeekerRange    `json:"seeker_range"`
	RecruiterRange RecruiterRange `json:"recruiter_range"`
	Facts          FactLedger     `json:"facts"`
	Messages       []Message      `json:"messages"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AppendMessage adds a message to the transcript.
func (s *Session) AppendMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// RecentExchanges returns up to n of the most recent messages per role,
// restored to chronological order. It scans the transcript backwards and
// stops as soon as both quotas are filled.
func (s *Session) RecentExchanges(n int) ExchangeWindow {
	var seeker, recruiter []string
	for i := len(s.Messages) - 1; i >= 0; i-- {
		msg := s.Messages[i]
		if msg.Role == RoleJobSeeker && len(seeker) < n {
			seeker = append(seeker, msg.Content)
		}
		if msg.Role == RoleRecruiter && len(recruiter) < n {
			recruiter = append(recruiter, msg.Content)
		}
		if len(seeker) >= n && len(recruiter) >= n {
			break
		}
	}
	reverse(seeker)
	reverse(recruiter)
	return ExchangeWindow{JobSeeker: seeker, Recruiter: recruiter}
}

// Validate checks structural invariants. The store calls this on load so a
// malformed persisted record fails closed instead of leaking into handlers.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session has empty id")
	}
	if !s.Role.Valid() {
		return fmt.Errorf("session %s has unknown role %q", s.ID, s.Role)
	}
	for i, msg := range s.Messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("session %s message %d has unknown role %q", s.ID, i, msg.Role)
		}
	}
	for role := range s.Facts {
		if !role.Valid() {
			return fmt.Errorf("session %s fact ledger has unknown role %q", s.ID, role)
		}
	}
	return nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Package domain contains core domain types for the OfferTalk application.
package domain

// Role identifies one of the two negotiation parties.
type Role string

const (
	// RoleJobSeeker is the candidate negotiating for a higher salary.
	RoleJobSeeker Role = "job_seeker"
	// RoleRecruiter is the company side negotiating within a budget.
	RoleRecruiter Role = "recruiter"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleJobSeeker || r == RoleRecruiter
}

// Opponent returns the other party's role.
func (r Role) Opponent() Role {
	if r == RoleJobSeeker {
		return RoleRecruiter
	}
	return RoleJobSeeker
}

// Label returns the human-readable name used to prefix channel replies.
func (r Role) Label() string {
	if r == RoleJobSeeker {
		return "Job Seeker"
	}
	return "Recruiter"
}

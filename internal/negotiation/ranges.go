// Package negotiation implements the salary negotiation engine: range
// derivation, fact extraction and accumulation, prompt composition, and the
// per-session turn loop.
package negotiation

import (
	"fmt"
	"math"

	"github.com/ashureev/offertalk/internal/domain"
)

// ValidationError reports malformed or incomplete session-creation input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// RangeInput carries the declared salary figures from a session-creation
// request. Fields not supplied by the client are nil.
type RangeInput struct {
	SeekerMin    *float64
	SeekerTarget *float64
	SeekerMax    *float64
	RecruiterMin *float64
	RecruiterMax *float64
}

// DeriveRanges computes both parties' salary ranges from the range declared
// by the initiating role. The counterpart range is derived from the declared
// anchor: a seeker-initiated session widens the recruiter budget around the
// seeker's figures, a recruiter-initiated session places the seeker's
// expectations around the budget.
func DeriveRanges(role domain.Role, in RangeInput) (domain.SeekerRange, domain.RecruiterRange, error) {
	switch role {
	case domain.RoleJobSeeker:
		if in.SeekerMin == nil || in.SeekerTarget == nil || in.SeekerMax == nil {
			return domain.SeekerRange{}, domain.RecruiterRange{}, &ValidationError{Reason: "Seeker salary ranges required"}
		}
		seeker := domain.SeekerRange{
			Min:    *in.SeekerMin,
			Target: *in.SeekerTarget,
			Max:    *in.SeekerMax,
		}
		recruiter := domain.RecruiterRange{
			Min: math.Round(seeker.Min * 0.8),
			Max: math.Round(seeker.Max * 1.5),
		}
		return seeker, recruiter, nil

	case domain.RoleRecruiter:
		if in.RecruiterMin == nil || in.RecruiterMax == nil {
			return domain.SeekerRange{}, domain.RecruiterRange{}, &ValidationError{Reason: "Recruiter salary range required"}
		}
		recruiter := domain.RecruiterRange{
			Min: *in.RecruiterMin,
			Max: *in.RecruiterMax,
		}
		seekerMin := recruiter.Min * 0.9
		seekerMax := recruiter.Max * 1.2
		seeker := domain.SeekerRange{
			Min:    seekerMin,
			Target: (seekerMin + seekerMax) / 2,
			Max:    seekerMax,
		}
		return seeker, recruiter, nil

	default:
		return domain.SeekerRange{}, domain.RecruiterRange{}, &ValidationError{Reason: fmt.Sprintf("unknown role %q", role)}
	}
}

package models

import "strings"

// EligibilityVerdict is the transient outcome of evaluating a student against a position.
// It is recomputed on every selection and never persisted on its own.
type EligibilityVerdict struct {
	Eligible bool
	Reasons  []string
}

// Reason joins the failed rule messages, or returns nil when every rule passed.
func (v EligibilityVerdict) Reason() *string {
	if len(v.Reasons) == 0 {
		return nil
	}
	joined := strings.Join(v.Reasons, "; ")
	return &joined
}

// Result maps the verdict to the persisted enrollment result.
func (v EligibilityVerdict) Result() EligibilityResult {
	if v.Eligible {
		return EligibilityEligible
	}
	return EligibilityIneligible
}

// Eligibility is the caller-facing rendering of a verdict.
type Eligibility struct {
	Eligible bool    `json:"eligible"`
	Reason   *string `json:"reason"`
}

// Public converts the verdict for API responses.
func (v EligibilityVerdict) Public() Eligibility {
	return Eligibility{Eligible: v.Eligible, Reason: v.Reason()}
}

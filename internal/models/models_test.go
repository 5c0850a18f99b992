package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEligibilityVerdictReason(t *testing.T) {
	assert.Nil(t, EligibilityVerdict{Eligible: true}.Reason())

	verdict := EligibilityVerdict{Reasons: []string{"first", "second"}}
	reason := verdict.Reason()
	require.NotNil(t, reason)
	assert.Equal(t, "first; second", *reason)
	assert.Equal(t, EligibilityIneligible, verdict.Result())
	assert.False(t, verdict.Public().Eligible)
}

func TestEnrollmentState(t *testing.T) {
	var none *Enrollment
	assert.Equal(t, EnrollmentStateNone, none.State())

	cases := []struct {
		name string
		e    Enrollment
		want EnrollmentState
	}{
		{"ineligible", Enrollment{EligibilityResult: EligibilityIneligible}, EnrollmentStateIneligibleTerminal},
		{"pending", Enrollment{EligibilityResult: EligibilityEligible}, EnrollmentStateEligiblePendingOptIn},
		{"opted in", Enrollment{EligibilityResult: EligibilityEligible, OptIn: true}, EnrollmentStateOptedIn},
		{"summary", Enrollment{EligibilityResult: EligibilityEligible, OptIn: true, CoopSummary: strPtr("done")}, EnrollmentStateSummarySubmitted},
		{"opted out keeps summary", Enrollment{EligibilityResult: EligibilityEligible, CoopSummary: strPtr("done")}, EnrollmentStateEligiblePendingOptIn},
		{"graded", Enrollment{EligibilityResult: EligibilityEligible, OptIn: true, Grade: strPtr("A")}, EnrollmentStateGraded},
		{"ineligible stays terminal", Enrollment{EligibilityResult: EligibilityIneligible, Grade: strPtr("A")}, EnrollmentStateIneligibleTerminal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.e
			assert.Equal(t, tc.want, e.State())
		})
	}
}

func TestPositionTotalHours(t *testing.T) {
	assert.Equal(t, 200, Position{NumberOfWeeks: 10, HoursPerWeek: 20}.TotalHours())
}

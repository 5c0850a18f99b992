package models

import "time"

// EligibilityResult is the persisted eligibility outcome of a selection.
type EligibilityResult string

// Possible eligibility results.
const (
	EligibilityEligible   EligibilityResult = "eligible"
	EligibilityIneligible EligibilityResult = "ineligible"
)

// EnrollmentState is the lifecycle stage derived from an enrollment row.
type EnrollmentState string

// Enrollment lifecycle stages. An eligible enrollment that was opted out is
// back in EnrollmentStateEligiblePendingOptIn and may opt in again.
const (
	EnrollmentStateNone                 EnrollmentState = "NONE"
	EnrollmentStateEligiblePendingOptIn EnrollmentState = "ELIGIBLE_PENDING_OPTIN"
	EnrollmentStateIneligibleTerminal   EnrollmentState = "INELIGIBLE_TERMINAL"
	EnrollmentStateOptedIn              EnrollmentState = "OPTED_IN"
	EnrollmentStateSummarySubmitted     EnrollmentState = "SUMMARY_SUBMITTED"
	EnrollmentStateGraded               EnrollmentState = "GRADED"
)

// Enrollment tracks one student's co-op credit journey for one position.
// There is at most one row per (student, position) pair.
type Enrollment struct {
	EnrollmentID      int64             `db:"enrollment_id" json:"enrollment_id"`
	StudentID         int64             `db:"student_id" json:"student_id"`
	PositionID        int64             `db:"position_id" json:"position_id"`
	EligibilityResult EligibilityResult `db:"eligibility_result" json:"eligibility_result"`
	EligibilityReason *string           `db:"eligibility_reason" json:"eligibility_reason"`
	OptIn             bool              `db:"opt_in" json:"opt_in"`
	CoopSummary       *string           `db:"coop_summary" json:"coop_summary"`
	Grade             *string           `db:"grade" json:"grade"`
	Department        string            `db:"department" json:"department"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// Eligible reports whether the enrollment was created from an eligible verdict.
func (e Enrollment) Eligible() bool {
	return e.EligibilityResult == EligibilityEligible
}

// State derives the lifecycle stage from the stored fields.
func (e *Enrollment) State() EnrollmentState {
	switch {
	case e == nil:
		return EnrollmentStateNone
	case !e.Eligible():
		return EnrollmentStateIneligibleTerminal
	case e.Grade != nil:
		return EnrollmentStateGraded
	case e.OptIn && e.CoopSummary != nil:
		return EnrollmentStateSummarySubmitted
	case e.OptIn:
		return EnrollmentStateOptedIn
	default:
		return EnrollmentStateEligiblePendingOptIn
	}
}

// EnrollmentDetail enriches Enrollment with student, position and employer info.
type EnrollmentDetail struct {
	Enrollment
	StudentName      string `db:"student_name" json:"student_name"`
	StudentEmail     string `db:"student_email" json:"student_email"`
	Major            string `db:"major" json:"major"`
	JobTitle         string `db:"job_title" json:"job_title"`
	NumberOfWeeks    int    `db:"number_of_weeks" json:"number_of_weeks"`
	HoursPerWeek     int    `db:"hours_per_week" json:"hours_per_week"`
	JobLocation      string `db:"job_location" json:"job_location"`
	CompanyName      string `db:"company_name" json:"company_name"`
	EmployerLocation string `db:"employer_location" json:"employer_location"`
}

// EnrollmentFilter narrows department listings for faculty.
type EnrollmentFilter struct {
	Department  string
	OptedInOnly bool
}

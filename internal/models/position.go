package models

import "time"

// PositionStatus tracks whether a position is still accepting a selection.
type PositionStatus string

// Possible position statuses.
const (
	PositionStatusOpen    PositionStatus = "open"
	PositionStatusPending PositionStatus = "pending"
	PositionStatusClosed  PositionStatus = "closed"
)

// Position is an internship posted by an employer. Version increments on every
// write and is used as the compare-and-set token when a student is selected.
type Position struct {
	PositionID        int64          `db:"position_id" json:"position_id"`
	EmployerID        int64          `db:"employer_id" json:"employer_id"`
	JobTitle          string         `db:"job_title" json:"job_title"`
	JobDescription    string         `db:"job_description" json:"job_description"`
	NumberOfWeeks     int            `db:"number_of_weeks" json:"number_of_weeks"`
	HoursPerWeek      int            `db:"hours_per_week" json:"hours_per_week"`
	JobLocation       string         `db:"job_location" json:"job_location"`
	MajorsOfInterest  string         `db:"majors_of_interest" json:"majors_of_interest"`
	RequiredSkills    *string        `db:"required_skills" json:"required_skills,omitempty"`
	PreferredSkills   *string        `db:"preferred_skills" json:"preferred_skills,omitempty"`
	SalaryInfo        *string        `db:"salary_info" json:"salary_info,omitempty"`
	Status            PositionStatus `db:"status" json:"status"`
	SelectedStudentID *int64         `db:"selected_student_id" json:"selected_student_id,omitempty"`
	OfferLetterPath   *string        `db:"offer_letter_path" json:"offer_letter_path,omitempty"`
	Version           int64          `db:"version" json:"-"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// TotalHours is the number of weeks multiplied by the weekly hours.
func (p Position) TotalHours() int {
	return p.NumberOfWeeks * p.HoursPerWeek
}

// PositionDetail enriches Position with the owning employer.
type PositionDetail struct {
	Position
	CompanyName      string `db:"company_name" json:"company_name"`
	EmployerLocation string `db:"employer_location" json:"employer_location"`
}

// PositionFilter captures search parameters for the public position listing.
type PositionFilter struct {
	Status       PositionStatus
	EmployerName string
	Location     string
	Major        string
	Skills       string
	Page         int
	PageSize     int
}

// PositionClaim describes the selection write performed on a position.
type PositionClaim struct {
	PositionID      int64
	StudentID       int64
	OfferLetterPath *string
	ExpectedVersion int64
}

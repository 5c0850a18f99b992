package models

import "time"

// ApplicationStatus is the employer-facing review state of an application.
type ApplicationStatus string

// Possible application statuses.
const (
	ApplicationStatusApplied     ApplicationStatus = "applied"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusSelected    ApplicationStatus = "selected"
)

// Application links a student to a position they applied for.
type Application struct {
	ApplicationID   int64             `db:"application_id" json:"application_id"`
	StudentID       int64             `db:"student_id" json:"student_id"`
	PositionID      int64             `db:"position_id" json:"position_id"`
	ApplicationDate time.Time         `db:"application_date" json:"application_date"`
	Status          ApplicationStatus `db:"status" json:"status"`
	Notes           *string           `db:"notes" json:"notes,omitempty"`
}

// StudentApplication is an application as seen by the applying student.
type StudentApplication struct {
	Application
	JobTitle          string         `db:"job_title" json:"job_title"`
	CompanyName       string         `db:"company_name" json:"company_name"`
	PositionStatus    PositionStatus `db:"position_status" json:"position_status"`
	SelectedStudentID *int64         `db:"selected_student_id" json:"selected_student_id,omitempty"`
}

// Applicant is an application as seen by the employer reviewing it.
type Applicant struct {
	Application
	FullName        string  `db:"full_name" json:"full_name"`
	Email           string  `db:"email" json:"email"`
	Department      string  `db:"department" json:"department"`
	Major           string  `db:"major" json:"major"`
	GPA             float64 `db:"gpa" json:"gpa"`
	CreditHours     int     `db:"credit_hours" json:"credit_hours"`
	SemesterStarted string  `db:"semester_started" json:"semester_started"`
	IsTransfer      bool    `db:"is_transfer" json:"is_transfer"`
}

// ApplicationOwnership resolves an application to the employer owning its position.
type ApplicationOwnership struct {
	ApplicationID int64 `db:"application_id"`
	PositionID    int64 `db:"position_id"`
	EmployerID    int64 `db:"employer_id"`
}

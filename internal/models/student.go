package models

import "time"

// Student is a learner who can apply to positions and earn co-op credit.
type Student struct {
	StudentID       int64     `db:"student_id" json:"student_id"`
	FullName        string    `db:"full_name" json:"full_name"`
	Email           string    `db:"email" json:"email"`
	Phone           *string   `db:"phone" json:"phone,omitempty"`
	Department      string    `db:"department" json:"department"`
	Major           string    `db:"major" json:"major"`
	CreditHours     int       `db:"credit_hours" json:"credit_hours"`
	GPA             float64   `db:"gpa" json:"gpa"`
	SemesterStarted string    `db:"semester_started" json:"semester_started"`
	IsTransfer      bool      `db:"is_transfer" json:"is_transfer"`
	ResumePath      *string   `db:"resume_path" json:"resume_path,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

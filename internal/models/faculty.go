package models

import "time"

// Faculty is a department co-op coordinator. Grading rights are scoped to Department.
type Faculty struct {
	FacultyID  int64     `db:"faculty_id" json:"faculty_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	Department string    `db:"department" json:"department"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

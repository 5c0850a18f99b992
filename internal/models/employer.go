package models

import "time"

// Employer owns positions and selects students for them.
type Employer struct {
	EmployerID   int64     `db:"employer_id" json:"employer_id"`
	CompanyName  string    `db:"company_name" json:"company_name"`
	Location     string    `db:"location" json:"location"`
	Website      *string   `db:"website" json:"website,omitempty"`
	ContactName  string    `db:"contact_name" json:"contact_name"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	ContactPhone string    `db:"contact_phone" json:"contact_phone"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

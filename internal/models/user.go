package models

// UserRole represents the portal actor kinds used by RBAC.
type UserRole string

const (
	RoleStudent  UserRole = "STUDENT"
	RoleEmployer UserRole = "EMPLOYER"
	RoleFaculty  UserRole = "FACULTY"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

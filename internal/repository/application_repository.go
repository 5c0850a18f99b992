package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/pkg/database"
)

// ErrDuplicateApplication is returned when a student applies to the same position twice.
var ErrDuplicateApplication = errors.New("application already exists")

// ApplicationRepository manages persistence for applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	const query = `INSERT INTO applications (student_id, position_id, status, notes)
        VALUES ($1, $2, $3, $4) RETURNING application_id, application_date`
	row := r.db.QueryRowxContext(ctx, query, application.StudentID, application.PositionID, application.Status, application.Notes)
	if err := row.Scan(&application.ApplicationID, &application.ApplicationDate); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// ListByStudent returns the student's applications, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentApplication, error) {
	const query = `SELECT a.application_id, a.student_id, a.position_id, a.application_date, a.status, a.notes,
        p.job_title, e.company_name, p.status AS position_status, p.selected_student_id
        FROM applications a
        JOIN positions p ON p.position_id = a.position_id
        JOIN employers e ON e.employer_id = p.employer_id
        WHERE a.student_id = $1 ORDER BY a.application_date DESC`
	var applications []models.StudentApplication
	if err := r.db.SelectContext(ctx, &applications, query, studentID); err != nil {
		return nil, fmt.Errorf("list student applications: %w", err)
	}
	return applications, nil
}

// ListByPosition returns every applicant for a position.
func (r *ApplicationRepository) ListByPosition(ctx context.Context, positionID int64) ([]models.Applicant, error) {
	const query = `SELECT a.application_id, a.student_id, a.position_id, a.application_date, a.status, a.notes,
        s.full_name, s.email, s.department, s.major, s.gpa, s.credit_hours, s.semester_started, s.is_transfer
        FROM applications a
        JOIN students s ON s.student_id = a.student_id
        WHERE a.position_id = $1 ORDER BY a.application_date ASC`
	var applicants []models.Applicant
	if err := r.db.SelectContext(ctx, &applicants, query, positionID); err != nil {
		return nil, fmt.Errorf("list position applicants: %w", err)
	}
	return applicants, nil
}

// FindOwnership resolves the employer owning the application's position.
func (r *ApplicationRepository) FindOwnership(ctx context.Context, applicationID int64) (*models.ApplicationOwnership, error) {
	const query = `SELECT a.application_id, a.position_id, p.employer_id
        FROM applications a JOIN positions p ON p.position_id = a.position_id
        WHERE a.application_id = $1`
	var ownership models.ApplicationOwnership
	if err := r.db.GetContext(ctx, &ownership, query, applicationID); err != nil {
		return nil, err
	}
	return &ownership, nil
}

// UpdateStatus changes the review status of an application.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, applicationID int64, status models.ApplicationStatus, notes *string) error {
	const query = `UPDATE applications SET status = $2, notes = COALESCE($3, notes) WHERE application_id = $1`
	if _, err := r.db.ExecContext(ctx, query, applicationID, status, notes); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

// MarkSelected flags the (student, position) application as selected. A
// missing application is not an error.
func (r *ApplicationRepository) MarkSelected(ctx context.Context, studentID, positionID int64) error {
	const query = `UPDATE applications SET status = $3 WHERE student_id = $1 AND position_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, positionID, models.ApplicationStatusSelected); err != nil {
		return fmt.Errorf("mark application selected: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coop-portal-api/internal/models"
)

const enrollmentColumns = `enrollment_id, student_id, position_id, eligibility_result, eligibility_reason, opt_in,
        coop_summary, grade, department, created_at, updated_at`

const enrollmentDetailQuery = `SELECT ce.enrollment_id, ce.student_id, ce.position_id, ce.eligibility_result, ce.eligibility_reason,
        ce.opt_in, ce.coop_summary, ce.grade, ce.department, ce.created_at, ce.updated_at,
        s.full_name AS student_name, s.email AS student_email, s.major,
        p.job_title, p.number_of_weeks, p.hours_per_week, p.job_location,
        e.company_name, e.location AS employer_location
        FROM coop_enrollments ce
        JOIN students s ON s.student_id = ce.student_id
        JOIN positions p ON p.position_id = ce.position_id
        JOIN employers e ON e.employer_id = p.employer_id`

// EnrollmentMutator inspects a locked enrollment and changes it in place.
// Returning an error aborts the transaction without writing.
type EnrollmentMutator = func(*models.Enrollment) error

// EnrollmentRepository manages persistence for co-op enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Upsert stores enrollment as the only record for its (student, position)
// pair, overwriting every mutable column of an existing row.
func (r *EnrollmentRepository) Upsert(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	enrollment.UpdatedAt = now
	const query = `INSERT INTO coop_enrollments (student_id, position_id, eligibility_result, eligibility_reason, opt_in,
        coop_summary, grade, department, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
        ON CONFLICT (student_id, position_id) DO UPDATE SET
        eligibility_result = EXCLUDED.eligibility_result, eligibility_reason = EXCLUDED.eligibility_reason,
        opt_in = EXCLUDED.opt_in, coop_summary = EXCLUDED.coop_summary, grade = EXCLUDED.grade,
        department = EXCLUDED.department, updated_at = EXCLUDED.updated_at
        RETURNING enrollment_id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		enrollment.StudentID, enrollment.PositionID, enrollment.EligibilityResult, enrollment.EligibilityReason,
		enrollment.OptIn, enrollment.CoopSummary, enrollment.Grade, enrollment.Department, now,
	)
	if err := row.Scan(&enrollment.EnrollmentID, &enrollment.CreatedAt); err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}
	return nil
}

// MutateByPair locks the enrollment for (studentID, positionID), applies fn
// and persists the result in one transaction. sql.ErrNoRows is returned when
// no enrollment exists.
func (r *EnrollmentRepository) MutateByPair(ctx context.Context, studentID, positionID int64, fn EnrollmentMutator) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM coop_enrollments WHERE student_id = $1 AND position_id = $2 FOR UPDATE`, enrollmentColumns)
	return r.mutate(ctx, fn, query, studentID, positionID)
}

// MutateByID is MutateByPair keyed by enrollment ID.
func (r *EnrollmentRepository) MutateByID(ctx context.Context, enrollmentID int64, fn EnrollmentMutator) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM coop_enrollments WHERE enrollment_id = $1 FOR UPDATE`, enrollmentColumns)
	return r.mutate(ctx, fn, query, enrollmentID)
}

func (r *EnrollmentRepository) mutate(ctx context.Context, fn EnrollmentMutator, lockQuery string, args ...interface{}) (result *models.Enrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var enrollment models.Enrollment
	if err = tx.GetContext(ctx, &enrollment, lockQuery, args...); err != nil {
		return nil, err
	}
	if err = fn(&enrollment); err != nil {
		return nil, err
	}

	enrollment.UpdatedAt = time.Now().UTC()
	const updateQuery = `UPDATE coop_enrollments SET opt_in = $2, coop_summary = $3, grade = $4, updated_at = $5 WHERE enrollment_id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, enrollment.EnrollmentID, enrollment.OptIn, enrollment.CoopSummary, enrollment.Grade, enrollment.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit enrollment: %w", err)
	}
	return &enrollment, nil
}

// FindDetailByID fetches an enrollment with student, position and employer columns.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, enrollmentID int64) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailQuery+" WHERE ce.enrollment_id = $1", enrollmentID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByStudent returns the student's enrollments, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, enrollmentDetailQuery+" WHERE ce.student_id = $1 ORDER BY ce.created_at DESC", studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return details, nil
}

// ListByDepartment returns enrollments snapshotted to a department.
func (r *EnrollmentRepository) ListByDepartment(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	query := enrollmentDetailQuery + " WHERE ce.department = $1"
	if filter.OptedInOnly {
		query += " AND ce.opt_in = TRUE"
	}
	query += " ORDER BY s.full_name ASC, ce.enrollment_id ASC"
	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, filter.Department); err != nil {
		return nil, fmt.Errorf("list department enrollments: %w", err)
	}
	return details, nil
}

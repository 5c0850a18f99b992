package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coop-portal-api/internal/models"
)

const positionDetailColumns = `p.position_id, p.employer_id, p.job_title, p.job_description, p.number_of_weeks, p.hours_per_week,
        p.job_location, p.majors_of_interest, p.required_skills, p.preferred_skills, p.salary_info, p.status,
        p.selected_student_id, p.offer_letter_path, p.version, p.created_at,
        e.company_name, e.location AS employer_location`

// PositionRepository manages persistence for internship positions.
type PositionRepository struct {
	db *sqlx.DB
}

// NewPositionRepository constructs a PositionRepository.
func NewPositionRepository(db *sqlx.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// FindByID fetches a position joined with its employer.
func (r *PositionRepository) FindByID(ctx context.Context, id int64) (*models.PositionDetail, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM positions p JOIN employers e ON e.employer_id = p.employer_id
        WHERE p.position_id = $1`, positionDetailColumns)
	var detail models.PositionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Search lists positions matching the filter, newest first.
func (r *PositionRepository) Search(ctx context.Context, filter models.PositionFilter) ([]models.PositionDetail, int, error) {
	base := "FROM positions p JOIN employers e ON e.employer_id = p.employer_id"
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.EmployerName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(e.company_name) LIKE $%d", len(args)+1))
		args = append(args, like(filter.EmployerName))
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(p.job_location) LIKE $%d", len(args)+1))
		args = append(args, like(filter.Location))
	}
	if filter.Major != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(p.majors_of_interest) LIKE $%d", len(args)+1))
		args = append(args, like(filter.Major))
	}
	if filter.Skills != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(COALESCE(p.required_skills, '')) LIKE $%d OR LOWER(COALESCE(p.preferred_skills, '')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, like(filter.Skills))
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
        %s ORDER BY p.created_at DESC, p.position_id DESC LIMIT %d OFFSET %d`, positionDetailColumns, base, size, offset)

	var positions []models.PositionDetail
	if err := r.db.SelectContext(ctx, &positions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search positions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count positions: %w", err)
	}
	return positions, total, nil
}

// ListByEmployer returns every position owned by the employer.
func (r *PositionRepository) ListByEmployer(ctx context.Context, employerID int64) ([]models.PositionDetail, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM positions p JOIN employers e ON e.employer_id = p.employer_id
        WHERE p.employer_id = $1 ORDER BY p.created_at DESC`, positionDetailColumns)
	var positions []models.PositionDetail
	if err := r.db.SelectContext(ctx, &positions, query, employerID); err != nil {
		return nil, fmt.Errorf("list employer positions: %w", err)
	}
	return positions, nil
}

// Create inserts a position and fills its generated columns.
func (r *PositionRepository) Create(ctx context.Context, position *models.Position) error {
	const query = `INSERT INTO positions (employer_id, job_title, job_description, number_of_weeks, hours_per_week, job_location,
        majors_of_interest, required_skills, preferred_skills, salary_info, status, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
        RETURNING position_id, version, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		position.EmployerID, position.JobTitle, position.JobDescription, position.NumberOfWeeks, position.HoursPerWeek,
		position.JobLocation, position.MajorsOfInterest, position.RequiredSkills, position.PreferredSkills, position.SalaryInfo,
		position.Status,
	)
	if err := row.Scan(&position.PositionID, &position.Version, &position.CreatedAt); err != nil {
		return fmt.Errorf("create position: %w", err)
	}
	return nil
}

// Update rewrites the editable columns and bumps the version.
func (r *PositionRepository) Update(ctx context.Context, position *models.Position) error {
	const query = `UPDATE positions SET job_title = $2, job_description = $3, number_of_weeks = $4, hours_per_week = $5,
        job_location = $6, majors_of_interest = $7, required_skills = $8, preferred_skills = $9, salary_info = $10,
        status = $11, version = version + 1
        WHERE position_id = $1 RETURNING version`
	row := r.db.QueryRowxContext(ctx, query,
		position.PositionID, position.JobTitle, position.JobDescription, position.NumberOfWeeks, position.HoursPerWeek,
		position.JobLocation, position.MajorsOfInterest, position.RequiredSkills, position.PreferredSkills, position.SalaryInfo,
		position.Status,
	)
	if err := row.Scan(&position.Version); err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return nil
}

// Claim records the selected student if the position is still at the
// expected version. It reports false when another writer got there first.
func (r *PositionRepository) Claim(ctx context.Context, claim models.PositionClaim) (bool, error) {
	const query = `UPDATE positions SET status = $2, selected_student_id = $3, offer_letter_path = $4, version = version + 1
        WHERE position_id = $1 AND version = $5`
	res, err := r.db.ExecContext(ctx, query, claim.PositionID, models.PositionStatusPending, claim.StudentID, claim.OfferLetterPath, claim.ExpectedVersion)
	if err != nil {
		return false, fmt.Errorf("claim position: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim position rows: %w", err)
	}
	return affected == 1, nil
}

func like(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

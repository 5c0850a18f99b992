package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coop-portal-api/internal/models"
)

// EmployerRepository reads employer records.
type EmployerRepository struct {
	db *sqlx.DB
}

// NewEmployerRepository constructs an EmployerRepository.
func NewEmployerRepository(db *sqlx.DB) *EmployerRepository {
	return &EmployerRepository{db: db}
}

// FindByID fetches an employer by ID.
func (r *EmployerRepository) FindByID(ctx context.Context, id int64) (*models.Employer, error) {
	const query = `SELECT employer_id, company_name, location, website, contact_name, contact_email, contact_phone, created_at
        FROM employers WHERE employer_id = $1`
	var employer models.Employer
	if err := r.db.GetContext(ctx, &employer, query, id); err != nil {
		return nil, err
	}
	return &employer, nil
}

package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coop-portal-api/internal/models"
)

var positionDetailMockColumns = []string{"position_id", "employer_id", "job_title", "job_description", "number_of_weeks", "hours_per_week",
	"job_location", "majors_of_interest", "required_skills", "preferred_skills", "salary_info", "status",
	"selected_student_id", "offer_letter_path", "version", "created_at", "company_name", "employer_location"}

func positionDetailRow(rows *sqlmock.Rows, id int64) *sqlmock.Rows {
	return rows.AddRow(id, int64(2), "Backend Intern", "Build APIs", 10, 20, "Remote", "CS", "Go", nil, nil, "open", nil, nil, int64(4), time.Now(), "Acme", "Springfield")
}

func TestPositionRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPositionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM positions p JOIN employers e ON e.employer_id = p.employer_id WHERE p.position_id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(positionDetailRow(sqlmock.NewRows(positionDetailMockColumns), 5))

	position, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Acme", position.CompanyName)
	assert.Equal(t, models.PositionStatusOpen, position.Status)
	assert.Equal(t, int64(4), position.Version)
	assert.Equal(t, 200, position.TotalHours())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionRepositorySearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPositionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND p.status = $1 AND LOWER(p.job_location) LIKE $2 ORDER BY p.created_at DESC, p.position_id DESC LIMIT 10 OFFSET 10")).
		WithArgs(models.PositionStatusOpen, "%remote%").
		WillReturnRows(positionDetailRow(sqlmock.NewRows(positionDetailMockColumns), 11))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM positions p JOIN employers e ON e.employer_id = p.employer_id WHERE 1=1 AND p.status = $1 AND LOWER(p.job_location) LIKE $2")).
		WithArgs(models.PositionStatusOpen, "%remote%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	positions, total, err := repo.Search(context.Background(), models.PositionFilter{Status: models.PositionStatusOpen, Location: " Remote ", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, positions, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPositionRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO positions").
		WithArgs(int64(2), "Backend Intern", "Build APIs", 10, 20, "Remote", "CS", nil, nil, nil, models.PositionStatusOpen).
		WillReturnRows(sqlmock.NewRows([]string{"position_id", "version", "created_at"}).AddRow(int64(12), int64(1), now))

	position := &models.Position{EmployerID: 2, JobTitle: "Backend Intern", JobDescription: "Build APIs", NumberOfWeeks: 10, HoursPerWeek: 20, JobLocation: "Remote", MajorsOfInterest: "CS", Status: models.PositionStatusOpen}
	require.NoError(t, repo.Create(context.Background(), position))
	assert.Equal(t, int64(12), position.PositionID)
	assert.Equal(t, int64(1), position.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionRepositoryClaim(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPositionRepository(db)

	claim := models.PositionClaim{PositionID: 5, StudentID: 7, ExpectedVersion: 4}
	mock.ExpectExec(regexp.QuoteMeta("WHERE position_id = $1 AND version = $5")).
		WithArgs(int64(5), models.PositionStatusPending, int64(7), nil, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE position_id = $1 AND version = $5")).
		WithArgs(int64(5), models.PositionStatusPending, int64(7), nil, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.Claim(context.Background(), claim)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.Claim(context.Background(), claim)
	require.NoError(t, err)
	assert.False(t, won, "stale version loses")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionRepositoryClaimError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPositionRepository(db)

	mock.ExpectExec("UPDATE positions").WillReturnError(errors.New("connection reset"))

	_, err := repo.Claim(context.Background(), models.PositionClaim{PositionID: 1})
	assert.Error(t, err)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coop-portal-api/internal/models"
)

var enrollmentMockColumns = []string{"enrollment_id", "student_id", "position_id", "eligibility_result", "eligibility_reason", "opt_in",
	"coop_summary", "grade", "department", "created_at", "updated_at"}

func TestEnrollmentRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	created := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, position_id) DO UPDATE SET")).
		WithArgs(int64(7), int64(5), models.EligibilityEligible, nil, false, nil, nil, "Computer Science", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"enrollment_id", "created_at"}).AddRow(int64(40), created))

	enrollment := &models.Enrollment{StudentID: 7, PositionID: 5, EligibilityResult: models.EligibilityEligible, Department: "Computer Science"}
	require.NoError(t, repo.Upsert(context.Background(), enrollment))
	assert.Equal(t, int64(40), enrollment.EnrollmentID)
	assert.Equal(t, created, enrollment.CreatedAt)
	assert.False(t, enrollment.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryMutateByPair(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM coop_enrollments WHERE student_id = $1 AND position_id = $2 FOR UPDATE")).
		WithArgs(int64(7), int64(5)).
		WillReturnRows(sqlmock.NewRows(enrollmentMockColumns).
			AddRow(int64(40), int64(7), int64(5), "eligible", nil, false, nil, nil, "Computer Science", time.Now(), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE coop_enrollments SET opt_in = $2, coop_summary = $3, grade = $4, updated_at = $5 WHERE enrollment_id = $1")).
		WithArgs(int64(40), true, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment, err := repo.MutateByPair(context.Background(), 7, 5, func(e *models.Enrollment) error {
		e.OptIn = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, enrollment.OptIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryMutateGuardRejects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	guardErr := errors.New("not eligible")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM coop_enrollments WHERE enrollment_id = $1 FOR UPDATE")).
		WithArgs(int64(40)).
		WillReturnRows(sqlmock.NewRows(enrollmentMockColumns).
			AddRow(int64(40), int64(7), int64(5), "ineligible", "GPA 1.5 is below minimum requirement of 2.0", false, nil, nil, "Computer Science", time.Now(), time.Now()))
	mock.ExpectRollback()

	_, err := repo.MutateByID(context.Background(), 40, func(e *models.Enrollment) error {
		return guardErr
	})
	assert.ErrorIs(t, err, guardErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryMutateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(7), int64(6)).
		WillReturnRows(sqlmock.NewRows(enrollmentMockColumns))
	mock.ExpectRollback()

	called := false
	_, err := repo.MutateByPair(context.Background(), 7, 6, func(e *models.Enrollment) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByDepartment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	columns := append(append([]string{}, enrollmentMockColumns...), "student_name", "student_email", "major", "job_title", "number_of_weeks", "hours_per_week", "job_location", "company_name", "employer_location")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ce.department = $1 AND ce.opt_in = TRUE ORDER BY s.full_name ASC")).
		WithArgs("Computer Science").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(40), int64(7), int64(5), "eligible", nil, true, "Great summer", nil, "Computer Science", time.Now(), time.Now(),
				"Ada", "ada@example.edu", "CS", "Backend Intern", 10, 20, "Remote", "Acme", "Springfield"))

	details, err := repo.ListByDepartment(context.Background(), models.EnrollmentFilter{Department: "Computer Science", OptedInOnly: true})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Ada", details[0].StudentName)
	assert.Equal(t, models.EnrollmentStateSummarySubmitted, details[0].State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coop-portal-api/internal/models"
)

func TestApplicationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO applications").
		WithArgs(int64(7), int64(5), models.ApplicationStatusApplied, nil).
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "application_date"}).AddRow(int64(30), now))

	app := &models.Application{StudentID: 7, PositionID: 5, Status: models.ApplicationStatusApplied}
	require.NoError(t, repo.Create(context.Background(), app))
	assert.Equal(t, int64(30), app.ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("INSERT INTO applications").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.Application{StudentID: 7, PositionID: 5, Status: models.ApplicationStatusApplied})
	assert.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestApplicationRepositoryMarkSelected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $3 WHERE student_id = $1 AND position_id = $2")).
		WithArgs(int64(7), int64(5), models.ApplicationStatusSelected).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkSelected(context.Background(), 7, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindOwnership(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.application_id = $1")).
		WithArgs(int64(30)).
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "position_id", "employer_id"}).AddRow(int64(30), int64(5), int64(2)))

	ownership, err := repo.FindOwnership(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ownership.EmployerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.student_id = $1 ORDER BY a.application_date DESC")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "student_id", "position_id", "application_date", "status", "notes", "job_title", "company_name", "position_status", "selected_student_id"}).
			AddRow(int64(30), int64(7), int64(5), time.Now(), "selected", nil, "Backend Intern", "Acme", "pending", int64(7)))

	apps, err := repo.ListByStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, models.ApplicationStatusSelected, apps[0].Status)
	require.NotNil(t, apps[0].SelectedStudentID)
	assert.Equal(t, int64(7), *apps[0].SelectedStudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/notification"
	appErrors "github.com/noah-isme/coop-portal-api/pkg/errors"
)

type mockSelectionPositions struct {
	mu        sync.Mutex
	positions map[int64]models.PositionDetail
	claims    []models.PositionClaim
	claimErr  error
}

func (m *mockSelectionPositions) FindByID(ctx context.Context, id int64) (*models.PositionDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.positions[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSelectionPositions) Claim(ctx context.Context, claim models.PositionClaim) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return false, m.claimErr
	}
	p := m.positions[claim.PositionID]
	if p.Version != claim.ExpectedVersion {
		return false, nil
	}
	p.Version++
	p.Status = models.PositionStatusPending
	p.SelectedStudentID = &claim.StudentID
	p.OfferLetterPath = claim.OfferLetterPath
	m.positions[claim.PositionID] = p
	m.claims = append(m.claims, claim)
	return true, nil
}

type mockStudentReader struct {
	students map[int64]models.Student
}

func (m mockStudentReader) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type mockApplicationSelector struct {
	mu       sync.Mutex
	selected []pairKey
	err      error
}

func (m *mockApplicationSelector) MarkSelected(ctx context.Context, studentID, positionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.selected = append(m.selected, pairKey{studentID, positionID})
	return nil
}

type mockNotifier struct {
	mu      sync.Mutex
	notices []notification.Notice
	err     error
}

func (m *mockNotifier) NotifyEligible(ctx context.Context, notice notification.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, notice)
	return m.err
}

type mockInvalidator struct {
	mu       sync.Mutex
	patterns []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	return nil
}

type selectionFixture struct {
	svc          *SelectionService
	positions    *mockSelectionPositions
	applications *mockApplicationSelector
	enrollments  *memoryEnrollmentRepo
	enrollSvc    *EnrollmentService
	notifier     *mockNotifier
	cache        *mockInvalidator
	metrics      *MetricsService
}

func newSelectionFixture(logger *zap.Logger) *selectionFixture {
	positions := &mockSelectionPositions{positions: map[int64]models.PositionDetail{
		5: {Position: models.Position{PositionID: 5, EmployerID: 2, JobTitle: "Backend Intern", NumberOfWeeks: 10, HoursPerWeek: 20, Status: models.PositionStatusOpen, Version: 1}, CompanyName: "Acme"},
		6: {Position: models.Position{PositionID: 6, EmployerID: 2, JobTitle: "Short Gig", NumberOfWeeks: 5, HoursPerWeek: 10, Status: models.PositionStatusOpen, Version: 1}, CompanyName: "Acme"},
		8: {Position: models.Position{PositionID: 8, EmployerID: 2, JobTitle: "Closed", NumberOfWeeks: 10, HoursPerWeek: 20, Status: models.PositionStatusClosed, Version: 3}, CompanyName: "Acme"},
	}}
	students := mockStudentReader{students: map[int64]models.Student{
		7:  {StudentID: 7, FullName: "Ada", Email: "ada@example.edu", Department: "Computer Science", GPA: 3.5, CreditHours: 60},
		11: {StudentID: 11, FullName: "Bo", Email: "bo@example.edu", Department: "Computer Science", GPA: 1.8, CreditHours: 10},
	}}
	enrollments := newMemoryEnrollmentRepo()
	enrollSvc := NewEnrollmentService(enrollments, mockFacultyReader{faculty: map[int64]models.Faculty{1: {FacultyID: 1, Department: "Computer Science"}}}, nil, logger)
	f := &selectionFixture{
		positions:    positions,
		applications: &mockApplicationSelector{},
		enrollments:  enrollments,
		enrollSvc:    enrollSvc,
		notifier:     &mockNotifier{},
		cache:        &mockInvalidator{},
		metrics:      NewMetricsService(),
	}
	f.svc = NewSelectionService(SelectionDeps{
		Positions:    positions,
		Students:     students,
		Applications: f.applications,
		Enrollments:  enrollSvc,
		Notifier:     f.notifier,
		Cache:        f.cache,
		Metrics:      f.metrics,
	}, nil, logger)
	return f
}

func TestSelectionServiceEligibleSelection(t *testing.T) {
	f := newSelectionFixture(nil)
	letter := "/offers/7.pdf"

	result, err := f.svc.Select(context.Background(), 2, 5, SelectStudentRequest{StudentID: 7, OfferLetterPath: &letter})
	require.NoError(t, err)
	assert.True(t, result.Eligibility.Eligible)
	assert.Nil(t, result.Eligibility.Reason)
	assert.NotZero(t, result.EnrollmentID)

	stored := f.positions.positions[5]
	assert.Equal(t, models.PositionStatusPending, stored.Status)
	require.NotNil(t, stored.SelectedStudentID)
	assert.Equal(t, int64(7), *stored.SelectedStudentID)
	assert.Equal(t, &letter, stored.OfferLetterPath)

	assert.Equal(t, []pairKey{{7, 5}}, f.applications.selected)
	enrollment := f.enrollments.get(7, 5)
	require.NotNil(t, enrollment)
	assert.Equal(t, "Computer Science", enrollment.Department)
	assert.Equal(t, models.EnrollmentStateEligiblePendingOptIn, enrollment.State())

	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, notification.Notice{RecipientEmail: "ada@example.edu", RecipientName: "Ada", PositionTitle: "Backend Intern", CompanyName: "Acme"}, f.notifier.notices[0])
	assert.Equal(t, []string{positionCachePattern}, f.cache.patterns)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().SelectionsEligible)
}

func TestSelectionServiceIneligibleSelection(t *testing.T) {
	f := newSelectionFixture(nil)

	result, err := f.svc.Select(context.Background(), 2, 6, SelectStudentRequest{StudentID: 11})
	require.NoError(t, err)
	assert.False(t, result.Eligibility.Eligible)
	require.NotNil(t, result.Eligibility.Reason)
	assert.Contains(t, *result.Eligibility.Reason, "GPA 1.8 is below minimum requirement of 2.0")
	assert.Empty(t, f.notifier.notices, "ineligible students are not notified")

	enrollment := f.enrollments.get(11, 6)
	require.NotNil(t, enrollment)
	assert.Equal(t, models.EnrollmentStateIneligibleTerminal, enrollment.State())
	assert.Equal(t, *result.Eligibility.Reason, *enrollment.EligibilityReason)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().SelectionsIneligible)
}

func TestSelectionServiceNotifierFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := newSelectionFixture(zap.New(core))
	f.notifier.err = errors.New("queue full")

	result, err := f.svc.Select(context.Background(), 2, 5, SelectStudentRequest{StudentID: 7})
	require.NoError(t, err)
	assert.True(t, result.Eligibility.Eligible)
	assert.NotNil(t, f.enrollments.get(7, 5))
	assert.Equal(t, 1, logs.FilterMessage("eligibility notice not queued").Len())
}

func TestSelectionServiceReselectionResetsEnrollment(t *testing.T) {
	f := newSelectionFixture(nil)
	ctx := context.Background()

	first, err := f.svc.Select(ctx, 2, 5, SelectStudentRequest{StudentID: 7})
	require.NoError(t, err)
	_, err = f.enrollSvc.OptIn(ctx, 7, OptRequest{PositionID: 5})
	require.NoError(t, err)
	_, err = f.enrollSvc.SubmitSummary(ctx, 7, SubmitSummaryRequest{PositionID: 5, CoopSummary: "done"})
	require.NoError(t, err)
	_, err = f.enrollSvc.AssignGrade(ctx, 1, first.EnrollmentID, AssignGradeRequest{Grade: "A"})
	require.NoError(t, err)

	second, err := f.svc.Select(ctx, 2, 5, SelectStudentRequest{StudentID: 7})
	require.NoError(t, err)
	assert.Equal(t, first.EnrollmentID, second.EnrollmentID)

	stored := f.enrollments.get(7, 5)
	assert.False(t, stored.OptIn)
	assert.Nil(t, stored.CoopSummary)
	assert.Nil(t, stored.Grade)
}

func TestSelectionServiceGuards(t *testing.T) {
	f := newSelectionFixture(nil)
	ctx := context.Background()

	_, err := f.svc.Select(ctx, 2, 404, SelectStudentRequest{StudentID: 7})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.Select(ctx, 3, 5, SelectStudentRequest{StudentID: 7})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Select(ctx, 2, 8, SelectStudentRequest{StudentID: 7})
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, http.StatusPreconditionFailed, appErrors.FromError(err).Status, "closed position")

	_, err = f.svc.Select(ctx, 2, 5, SelectStudentRequest{StudentID: 404})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.Select(ctx, 2, 5, SelectStudentRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	assert.Empty(t, f.positions.claims, "nothing written when a guard fails")
	assert.Empty(t, f.enrollments.rows)
	assert.Empty(t, f.notifier.notices)
}

func TestSelectionServiceLosingConcurrentClaim(t *testing.T) {
	f := newSelectionFixture(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Select(ctx, 2, 5, SelectStudentRequest{StudentID: 7})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	}
	assert.GreaterOrEqual(t, succeeded, 1)
	assert.Len(t, f.positions.claims, succeeded)
	assert.Len(t, f.enrollments.rows, 1)
}

func TestSelectionServiceStorageFailureAfterClaim(t *testing.T) {
	f := newSelectionFixture(nil)
	f.applications.err = errors.New("db down")

	_, err := f.svc.Select(context.Background(), 2, 5, SelectStudentRequest{StudentID: 7})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, models.PositionStatusPending, f.positions.positions[5].Status, "committed claim is kept")
	assert.Empty(t, f.notifier.notices)
}

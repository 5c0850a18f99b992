package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coop-portal-api/internal/models"
	appErrors "github.com/noah-isme/coop-portal-api/pkg/errors"
)

type enrollmentRepository interface {
	Upsert(ctx context.Context, enrollment *models.Enrollment) error
	MutateByPair(ctx context.Context, studentID, positionID int64, fn func(*models.Enrollment) error) (*models.Enrollment, error)
	MutateByID(ctx context.Context, enrollmentID int64, fn func(*models.Enrollment) error) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, enrollmentID int64) (*models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
	ListByDepartment(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

type facultyReader interface {
	FindByID(ctx context.Context, id int64) (*models.Faculty, error)
}

// ReplaceEnrollmentParams carries the outcome of a selection into the enrollment store.
type ReplaceEnrollmentParams struct {
	StudentID  int64
	PositionID int64
	Verdict    models.EligibilityVerdict
	Department string
}

// OptRequest identifies the enrollment a student is opting in or out of.
type OptRequest struct {
	PositionID int64 `json:"position_id" validate:"required,gt=0"`
}

// SubmitSummaryRequest carries the student's end-of-internship summary.
type SubmitSummaryRequest struct {
	PositionID  int64  `json:"position_id" validate:"required,gt=0"`
	CoopSummary string `json:"coop_summary" validate:"required"`
}

// AssignGradeRequest carries the faculty grade.
type AssignGradeRequest struct {
	Grade string `json:"grade" validate:"required,max=16"`
}

// EnrollmentService runs the co-op enrollment lifecycle.
type EnrollmentService struct {
	repo      enrollmentRepository
	faculty   facultyReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, faculty facultyReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, faculty: faculty, validator: validate, logger: logger}
}

// Replace makes a fresh enrollment the only record for the (student,
// position) pair. Any earlier opt-in, summary or grade is discarded.
func (s *EnrollmentService) Replace(ctx context.Context, params ReplaceEnrollmentParams) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		StudentID:         params.StudentID,
		PositionID:        params.PositionID,
		EligibilityResult: params.Verdict.Result(),
		EligibilityReason: params.Verdict.Reason(),
		OptIn:             false,
		CoopSummary:       nil,
		Grade:             nil,
		Department:        params.Department,
	}
	if err := s.repo.Upsert(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record enrollment")
	}
	s.logger.Info("enrollment replaced",
		zap.Int64("enrollment_id", enrollment.EnrollmentID),
		zap.Int64("student_id", enrollment.StudentID),
		zap.Int64("position_id", enrollment.PositionID),
		zap.String("eligibility", string(enrollment.EligibilityResult)),
	)
	return enrollment, nil
}

// OptIn records that the student wants co-op credit. Only eligible
// enrollments may opt in; repeating the call is harmless.
func (s *EnrollmentService) OptIn(ctx context.Context, studentID int64, req OptRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid opt-in payload")
	}
	enrollment, err := s.repo.MutateByPair(ctx, studentID, req.PositionID, func(e *models.Enrollment) error {
		if !e.Eligible() {
			return appErrors.Clone(appErrors.ErrNotEligible, "student is not eligible for co-op credit for this position")
		}
		e.OptIn = true
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "failed to opt in")
	}
	return enrollment, nil
}

// OptOut withdraws a co-op credit request. It is allowed in every state.
func (s *EnrollmentService) OptOut(ctx context.Context, studentID int64, req OptRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid opt-out payload")
	}
	enrollment, err := s.repo.MutateByPair(ctx, studentID, req.PositionID, func(e *models.Enrollment) error {
		e.OptIn = false
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "failed to opt out")
	}
	return enrollment, nil
}

// SubmitSummary stores the student's summary, replacing any earlier one.
func (s *EnrollmentService) SubmitSummary(ctx context.Context, studentID int64, req SubmitSummaryRequest) (*models.Enrollment, error) {
	req.CoopSummary = strings.TrimSpace(req.CoopSummary)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid summary payload")
	}
	enrollment, err := s.repo.MutateByPair(ctx, studentID, req.PositionID, func(e *models.Enrollment) error {
		if !e.OptIn {
			return appErrors.Clone(appErrors.ErrNotOptedIn, "opt in for co-op credit before submitting a summary")
		}
		summary := req.CoopSummary
		e.CoopSummary = &summary
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "failed to submit summary")
	}
	return enrollment, nil
}

// AssignGrade lets faculty grade an eligible enrollment snapshotted to their
// department. Department names must match exactly.
func (s *EnrollmentService) AssignGrade(ctx context.Context, facultyID, enrollmentID int64, req AssignGradeRequest) (*models.Enrollment, error) {
	req.Grade = strings.TrimSpace(req.Grade)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	faculty, err := s.loadFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.repo.MutateByID(ctx, enrollmentID, func(e *models.Enrollment) error {
		if e.Department != faculty.Department {
			return appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another department")
		}
		if !e.Eligible() {
			return appErrors.Clone(appErrors.ErrNotEligible, "ineligible enrollments cannot be graded")
		}
		grade := req.Grade
		e.Grade = &grade
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "failed to assign grade")
	}
	s.logger.Info("enrollment graded",
		zap.Int64("enrollment_id", enrollmentID),
		zap.Int64("faculty_id", facultyID),
	)
	return enrollment, nil
}

// ListForStudent returns every enrollment of the student.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	details, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return details, nil
}

// ListForFaculty returns the enrollments of the faculty member's department.
func (s *EnrollmentService) ListForFaculty(ctx context.Context, facultyID int64, optedInOnly bool) ([]models.EnrollmentDetail, error) {
	faculty, err := s.loadFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	details, err := s.repo.ListByDepartment(ctx, models.EnrollmentFilter{Department: faculty.Department, OptedInOnly: optedInOnly})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department enrollments")
	}
	return details, nil
}

// GetForFaculty returns one enrollment if it belongs to the faculty member's department.
func (s *EnrollmentService) GetForFaculty(ctx context.Context, facultyID, enrollmentID int64) (*models.EnrollmentDetail, error) {
	faculty, err := s.loadFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	detail, err := s.repo.FindDetailByID(ctx, enrollmentID)
	if err != nil {
		return nil, s.translate(err, "failed to load enrollment")
	}
	if detail.Department != faculty.Department {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another department")
	}
	return detail, nil
}

func (s *EnrollmentService) loadFaculty(ctx context.Context, facultyID int64) (*models.Faculty, error) {
	faculty, err := s.faculty.FindByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return faculty, nil
}

func (s *EnrollmentService) translate(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

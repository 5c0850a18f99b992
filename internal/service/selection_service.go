package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coop-portal-api/internal/eligibility"
	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/notification"
	appErrors "github.com/noah-isme/coop-portal-api/pkg/errors"
)

type selectionPositionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.PositionDetail, error)
	Claim(ctx context.Context, claim models.PositionClaim) (bool, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type applicationSelector interface {
	MarkSelected(ctx context.Context, studentID, positionID int64) error
}

type enrollmentReplacer interface {
	Replace(ctx context.Context, params ReplaceEnrollmentParams) (*models.Enrollment, error)
}

type eligibilityNotifier interface {
	NotifyEligible(ctx context.Context, notice notification.Notice) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type selectionRecorder interface {
	ObserveSelection(result models.EligibilityResult)
}

// SelectStudentRequest is the employer's selection payload.
type SelectStudentRequest struct {
	StudentID       int64   `json:"student_id" validate:"required,gt=0"`
	OfferLetterPath *string `json:"offer_letter_path" validate:"omitempty,max=512"`
}

// SelectionResult reports the eligibility outcome of a selection.
type SelectionResult struct {
	PositionID   int64              `json:"position_id"`
	StudentID    int64              `json:"student_id"`
	EnrollmentID int64              `json:"enrollment_id"`
	Eligibility  models.Eligibility `json:"eligibility"`
}

// SelectionDeps bundles the collaborators of SelectionService.
type SelectionDeps struct {
	Positions    selectionPositionRepository
	Students     studentReader
	Applications applicationSelector
	Enrollments  enrollmentReplacer
	Notifier     eligibilityNotifier
	Cache        cacheInvalidator
	Metrics      selectionRecorder
}

// SelectionService records an employer's choice of student for a position
// and decides the student's co-op eligibility.
type SelectionService struct {
	positions    selectionPositionRepository
	students     studentReader
	applications applicationSelector
	enrollments  enrollmentReplacer
	notifier     eligibilityNotifier
	cache        cacheInvalidator
	metrics      selectionRecorder
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSelectionService constructs a SelectionService.
func NewSelectionService(deps SelectionDeps, validate *validator.Validate, logger *zap.Logger) *SelectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{
		positions:    deps.Positions,
		students:     deps.Students,
		applications: deps.Applications,
		enrollments:  deps.Enrollments,
		notifier:     deps.Notifier,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
		validator:    validate,
		logger:       logger,
	}
}

// Select runs the selection workflow for positionID on behalf of employerID.
// Steps that already committed stay committed if a later step fails.
func (s *SelectionService) Select(ctx context.Context, employerID, positionID int64, req SelectStudentRequest) (*SelectionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}

	position, err := s.positions.FindByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load position")
	}
	if position.EmployerID != employerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "position belongs to another employer")
	}
	if position.Status == models.PositionStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "position is closed")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	verdict := eligibility.Evaluate(*student, position.Position)

	won, err := s.positions.Claim(ctx, models.PositionClaim{
		PositionID:      position.PositionID,
		StudentID:       student.StudentID,
		OfferLetterPath: req.OfferLetterPath,
		ExpectedVersion: position.Version,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record selection")
	}
	if !won {
		return nil, appErrors.Clone(appErrors.ErrConflict, "position was modified concurrently, reload and retry")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, positionCachePattern); err != nil {
			s.logger.Warn("failed to invalidate position cache", zap.Error(err))
		}
	}

	if err := s.applications.MarkSelected(ctx, student.StudentID, position.PositionID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}

	enrollment, err := s.enrollments.Replace(ctx, ReplaceEnrollmentParams{
		StudentID:  student.StudentID,
		PositionID: position.PositionID,
		Verdict:    verdict,
		Department: student.Department,
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveSelection(verdict.Result())
	}

	if verdict.Eligible && s.notifier != nil {
		notice := notification.Notice{
			RecipientEmail: student.Email,
			RecipientName:  student.FullName,
			PositionTitle:  position.JobTitle,
			CompanyName:    position.CompanyName,
		}
		if err := s.notifier.NotifyEligible(ctx, notice); err != nil {
			s.logger.Warn("eligibility notice not queued",
				zap.Int64("student_id", student.StudentID),
				zap.Int64("position_id", position.PositionID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("student selected",
		zap.Int64("employer_id", employerID),
		zap.Int64("position_id", position.PositionID),
		zap.Int64("student_id", student.StudentID),
		zap.Bool("eligible", verdict.Eligible),
	)

	return &SelectionResult{
		PositionID:   position.PositionID,
		StudentID:    student.StudentID,
		EnrollmentID: enrollment.EnrollmentID,
		Eligibility:  verdict.Public(),
	}, nil
}

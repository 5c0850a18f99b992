package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/repository"
	appErrors "github.com/noah-isme/coop-portal-api/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	ListByStudent(ctx context.Context, studentID int64) ([]models.StudentApplication, error)
	ListByPosition(ctx context.Context, positionID int64) ([]models.Applicant, error)
	FindOwnership(ctx context.Context, applicationID int64) (*models.ApplicationOwnership, error)
	UpdateStatus(ctx context.Context, applicationID int64, status models.ApplicationStatus, notes *string) error
}

type positionReader interface {
	FindByID(ctx context.Context, id int64) (*models.PositionDetail, error)
}

// ApplyRequest is a student's application payload.
type ApplyRequest struct {
	PositionID int64   `json:"position_id" validate:"required,gt=0"`
	Notes      *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateApplicationStatusRequest is an employer's review decision.
type UpdateApplicationStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=applied shortlisted rejected selected"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

// ApplicationService handles student applications and employer review.
type ApplicationService struct {
	repo      applicationRepository
	positions positionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(repo applicationRepository, positions positionReader, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, positions: positions, validator: validate, logger: logger}
}

// Apply records a student's application. Closed positions refuse new applicants.
func (s *ApplicationService) Apply(ctx context.Context, studentID int64, req ApplyRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	position, err := s.loadPosition(ctx, req.PositionID)
	if err != nil {
		return nil, err
	}
	if position.Status == models.PositionStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "position is closed")
	}

	application := &models.Application{
		StudentID:  studentID,
		PositionID: req.PositionID,
		Status:     models.ApplicationStatusApplied,
		Notes:      req.Notes,
	}
	if err := s.repo.Create(ctx, application); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already applied to this position")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	s.logger.Info("application submitted", zap.Int64("student_id", studentID), zap.Int64("position_id", req.PositionID))
	return application, nil
}

// ListForStudent returns the student's applications.
func (s *ApplicationService) ListForStudent(ctx context.Context, studentID int64) ([]models.StudentApplication, error) {
	apps, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, nil
}

// ListForPosition returns applicants for a position owned by the employer.
func (s *ApplicationService) ListForPosition(ctx context.Context, employerID, positionID int64) ([]models.Applicant, error) {
	position, err := s.loadPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if position.EmployerID != employerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "position belongs to another employer")
	}
	applicants, err := s.repo.ListByPosition(ctx, positionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}
	return applicants, nil
}

// UpdateStatus changes the review status of an application on the employer's position.
func (s *ApplicationService) UpdateStatus(ctx context.Context, employerID, applicationID int64, req UpdateApplicationStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	ownership, err := s.repo.FindOwnership(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if ownership.EmployerID != employerID {
		return appErrors.Clone(appErrors.ErrForbidden, "application belongs to another employer")
	}
	if err := s.repo.UpdateStatus(ctx, applicationID, models.ApplicationStatus(req.Status), req.Notes); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	return nil
}

func (s *ApplicationService) loadPosition(ctx context.Context, positionID int64) (*models.PositionDetail, error) {
	position, err := s.positions.FindByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load position")
	}
	return position, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coop-portal-api/internal/models"
	appErrors "github.com/noah-isme/coop-portal-api/pkg/errors"
)

const positionCachePattern = "positions:*"

type positionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.PositionDetail, error)
	Search(ctx context.Context, filter models.PositionFilter) ([]models.PositionDetail, int, error)
	ListByEmployer(ctx context.Context, employerID int64) ([]models.PositionDetail, error)
	Create(ctx context.Context, position *models.Position) error
	Update(ctx context.Context, position *models.Position) error
}

type employerReader interface {
	FindByID(ctx context.Context, id int64) (*models.Employer, error)
}

// PositionRequest is the create/update payload for a position.
type PositionRequest struct {
	JobTitle         string  `json:"job_title" validate:"required,max=200"`
	JobDescription   string  `json:"job_description" validate:"required"`
	NumberOfWeeks    int     `json:"number_of_weeks" validate:"required,gt=0"`
	HoursPerWeek     int     `json:"hours_per_week" validate:"required,gt=0,lte=80"`
	JobLocation      string  `json:"job_location" validate:"required"`
	MajorsOfInterest string  `json:"majors_of_interest" validate:"required"`
	RequiredSkills   *string `json:"required_skills"`
	PreferredSkills  *string `json:"preferred_skills"`
	SalaryInfo       *string `json:"salary_info"`
	Status           string  `json:"status" validate:"omitempty,oneof=open pending closed"`
}

// PositionSearchResult is a page of positions.
type PositionSearchResult struct {
	Items []models.PositionDetail `json:"items"`
	Total int                     `json:"total"`
}

// PositionService manages employer postings and the public listing.
type PositionService struct {
	repo      positionRepository
	employers employerReader
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPositionService constructs a PositionService. cache may be nil.
func NewPositionService(repo positionRepository, employers employerReader, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *PositionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositionService{repo: repo, employers: employers, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Create posts a new open position for the employer.
func (s *PositionService) Create(ctx context.Context, employerID int64, req PositionRequest) (*models.PositionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid position payload")
	}
	employer, err := s.employers.FindByID(ctx, employerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employer")
	}

	position := models.Position{EmployerID: employerID, Status: models.PositionStatusOpen}
	applyPositionRequest(&position, req)
	if err := s.repo.Create(ctx, &position); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create position")
	}
	s.invalidate(ctx)
	s.logger.Info("position created", zap.Int64("position_id", position.PositionID), zap.Int64("employer_id", employerID))
	return &models.PositionDetail{Position: position, CompanyName: employer.CompanyName, EmployerLocation: employer.Location}, nil
}

// Update rewrites an employer's own position.
func (s *PositionService) Update(ctx context.Context, employerID, positionID int64, req PositionRequest) (*models.PositionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid position payload")
	}
	detail, err := s.Get(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if detail.EmployerID != employerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "position belongs to another employer")
	}

	applyPositionRequest(&detail.Position, req)
	if err := s.repo.Update(ctx, &detail.Position); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update position")
	}
	s.invalidate(ctx)
	return detail, nil
}

// Get returns one position.
func (s *PositionService) Get(ctx context.Context, positionID int64) (*models.PositionDetail, error) {
	detail, err := s.repo.FindByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "position not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load position")
	}
	return detail, nil
}

// Search lists positions for students. The boolean reports a cache hit.
func (s *PositionService) Search(ctx context.Context, filter models.PositionFilter) (*PositionSearchResult, bool, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	key := positionSearchKey(filter)

	var result PositionSearchResult
	hit, err := s.cache.Fetch(ctx, key, &result, s.cacheTTL, func(ctx context.Context) error {
		items, total, err := s.repo.Search(ctx, filter)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search positions")
		}
		if items == nil {
			items = []models.PositionDetail{}
		}
		result = PositionSearchResult{Items: items, Total: total}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, hit, nil
}

// ListByEmployer returns the employer's own positions.
func (s *PositionService) ListByEmployer(ctx context.Context, employerID int64) ([]models.PositionDetail, error) {
	positions, err := s.repo.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list positions")
	}
	return positions, nil
}

func (s *PositionService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, positionCachePattern)
}

func applyPositionRequest(position *models.Position, req PositionRequest) {
	position.JobTitle = strings.TrimSpace(req.JobTitle)
	position.JobDescription = req.JobDescription
	position.NumberOfWeeks = req.NumberOfWeeks
	position.HoursPerWeek = req.HoursPerWeek
	position.JobLocation = strings.TrimSpace(req.JobLocation)
	position.MajorsOfInterest = req.MajorsOfInterest
	position.RequiredSkills = req.RequiredSkills
	position.PreferredSkills = req.PreferredSkills
	position.SalaryInfo = req.SalaryInfo
	if req.Status != "" {
		position.Status = models.PositionStatus(req.Status)
	}
}

func positionSearchKey(filter models.PositionFilter) string {
	return CacheKey("positions", "search", string(filter.Status), filter.EmployerName, filter.Location, filter.Major, filter.Skills,
		strconv.Itoa(filter.Page), strconv.Itoa(filter.PageSize))
}

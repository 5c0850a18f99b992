package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/coop-portal-api/internal/eligibility"
	"github.com/noah-isme/coop-portal-api/internal/models"
	appErrors "github.com/noah-isme/coop-portal-api/pkg/errors"
)

// StudentProfile is the student's own record plus the semester estimate used
// by the eligibility rules.
type StudentProfile struct {
	models.Student
	EstimatedSemesters int `json:"estimated_semesters"`
}

// ProfileService serves read-only profiles of the authenticated actor.
type ProfileService struct {
	students  studentReader
	employers employerReader
	faculty   facultyReader
	logger    *zap.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(students studentReader, employers employerReader, faculty facultyReader, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{students: students, employers: employers, faculty: faculty, logger: logger}
}

// Student returns the student profile.
func (s *ProfileService) Student(ctx context.Context, studentID int64) (*StudentProfile, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, profileError(err, "student")
	}
	return &StudentProfile{Student: *student, EstimatedSemesters: eligibility.EstimatedSemesters(student.CreditHours)}, nil
}

// Employer returns the employer profile.
func (s *ProfileService) Employer(ctx context.Context, employerID int64) (*models.Employer, error) {
	employer, err := s.employers.FindByID(ctx, employerID)
	if err != nil {
		return nil, profileError(err, "employer")
	}
	return employer, nil
}

// Faculty returns the faculty profile.
func (s *ProfileService) Faculty(ctx context.Context, facultyID int64) (*models.Faculty, error) {
	faculty, err := s.faculty.FindByID(ctx, facultyID)
	if err != nil {
		return nil, profileError(err, "faculty")
	}
	return faculty, nil
}

func profileError(err error, kind string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, kind+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+kind)
}

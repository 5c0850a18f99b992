package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coop-portal-api/internal/models"
	appErrors "github.com/noah-isme/coop-portal-api/pkg/errors"
	"github.com/noah-isme/coop-portal-api/pkg/export"
)

// RosterFormat selects the export encoding.
type RosterFormat string

// Supported roster formats.
const (
	RosterFormatCSV RosterFormat = "csv"
	RosterFormatPDF RosterFormat = "pdf"
)

var rosterHeaders = []string{"enrollment", "student", "email", "major", "company", "position", "weeks", "hours", "summary", "grade"}

type departmentRoster interface {
	ListForFaculty(ctx context.Context, facultyID int64, optedInOnly bool) ([]models.EnrollmentDetail, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// RosterFile is a rendered roster ready for download.
type RosterFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// RosterService exports a department's opted-in co-op students.
type RosterService struct {
	enrollments departmentRoster
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewRosterService constructs a RosterService. Nil renderers fall back to pkg/export.
func NewRosterService(enrollments departmentRoster, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *RosterService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{enrollments: enrollments, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export renders the faculty member's roster in the requested format.
func (s *RosterService) Export(ctx context.Context, facultyID int64, format RosterFormat) (*RosterFile, error) {
	format = RosterFormat(strings.ToLower(string(format)))
	if format == "" {
		format = RosterFormatCSV
	}
	if format != RosterFormatCSV && format != RosterFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	details, err := s.enrollments.ListForFaculty(ctx, facultyID, true)
	if err != nil {
		return nil, err
	}
	dataset := buildRosterDataset(details)
	stamp := s.now().UTC().Format("20060102")

	var (
		data        []byte
		contentType string
	)
	switch format {
	case RosterFormatPDF:
		data, err = s.pdf.Render(dataset, fmt.Sprintf("Co-op Students (%d)", len(details)))
		contentType = "application/pdf"
	default:
		data, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	s.logger.Info("roster exported", zap.Int64("faculty_id", facultyID), zap.String("format", string(format)), zap.Int("rows", len(details)))
	return &RosterFile{
		Filename:    fmt.Sprintf("coop-roster-%s.%s", stamp, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func buildRosterDataset(details []models.EnrollmentDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(details))
	for _, d := range details {
		summary := "no"
		if d.CoopSummary != nil {
			summary = "yes"
		}
		grade := ""
		if d.Grade != nil {
			grade = *d.Grade
		}
		rows = append(rows, map[string]string{
			"enrollment": strconv.FormatInt(d.EnrollmentID, 10),
			"student":    d.StudentName,
			"email":      d.StudentEmail,
			"major":      d.Major,
			"company":    d.CompanyName,
			"position":   d.JobTitle,
			"weeks":      strconv.Itoa(d.NumberOfWeeks),
			"hours":      strconv.Itoa(d.NumberOfWeeks * d.HoursPerWeek),
			"summary":    summary,
			"grade":      grade,
		})
	}
	return export.Dataset{Headers: rosterHeaders, Rows: rows}
}

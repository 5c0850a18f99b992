package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/service"
	"github.com/noah-isme/coop-portal-api/pkg/response"
)

type facultyEnrollmentService interface {
	ListForFaculty(ctx context.Context, facultyID int64, optedInOnly bool) ([]models.EnrollmentDetail, error)
	GetForFaculty(ctx context.Context, facultyID, enrollmentID int64) (*models.EnrollmentDetail, error)
	AssignGrade(ctx context.Context, facultyID, enrollmentID int64, req service.AssignGradeRequest) (*models.Enrollment, error)
}

type rosterExporter interface {
	Export(ctx context.Context, facultyID int64, format service.RosterFormat) (*service.RosterFile, error)
}

// FacultyHandler serves department coordinators.
type FacultyHandler struct {
	enrollments facultyEnrollmentService
	roster      rosterExporter
}

// NewFacultyHandler builds a faculty handler.
func NewFacultyHandler(enrollments facultyEnrollmentService, roster rosterExporter) *FacultyHandler {
	return &FacultyHandler{enrollments: enrollments, roster: roster}
}

// List godoc
// @Summary List co-op students in the faculty's department
// @Tags Faculty
// @Produce json
// @Param all query bool false "Include students who have not opted in"
// @Success 200 {object} response.Envelope
// @Router /faculty/coop-students [get]
func (h *FacultyHandler) List(c *gin.Context) {
	facultyID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	optedInOnly := !strings.EqualFold(c.Query("all"), "true")
	items, err := h.enrollments.ListForFaculty(c.Request.Context(), facultyID, optedInOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detailViews(items), nil)
}

// Get godoc
// @Summary Get one co-op enrollment
// @Tags Faculty
// @Produce json
// @Param enrollmentId path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/coop-students/{enrollmentId} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
	facultyID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollmentID, err := idParam(c, "enrollmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.enrollments.GetForFaculty(c.Request.Context(), facultyID, enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollmentDetailView{EnrollmentDetail: *detail, State: detail.Enrollment.State()}, nil)
}

// Grade godoc
// @Summary Assign a co-op grade
// @Tags Faculty
// @Accept json
// @Produce json
// @Param enrollmentId path int true "Enrollment ID"
// @Param payload body service.AssignGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /faculty/coop-students/{enrollmentId}/grade [put]
func (h *FacultyHandler) Grade(c *gin.Context) {
	facultyID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollmentID, err := idParam(c, "enrollmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AssignGradeRequest
	if err := bindJSON(c, &req, "invalid grade payload"); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.AssignGrade(c.Request.Context(), facultyID, enrollmentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(enrollment), nil)
}

// Export godoc
// @Summary Download the department roster
// @Tags Faculty
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /faculty/roster [get]
func (h *FacultyHandler) Export(c *gin.Context) {
	facultyID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.roster.Export(c.Request.Context(), facultyID, service.RosterFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

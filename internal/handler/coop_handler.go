package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/service"
	"github.com/noah-isme/coop-portal-api/pkg/response"
)

type studentEnrollmentService interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
	OptIn(ctx context.Context, studentID int64, req service.OptRequest) (*models.Enrollment, error)
	OptOut(ctx context.Context, studentID int64, req service.OptRequest) (*models.Enrollment, error)
	SubmitSummary(ctx context.Context, studentID int64, req service.SubmitSummaryRequest) (*models.Enrollment, error)
}

// CoopHandler serves the student side of the co-op credit lifecycle.
type CoopHandler struct {
	service studentEnrollmentService
}

// NewCoopHandler builds a co-op handler.
func NewCoopHandler(service studentEnrollmentService) *CoopHandler {
	return &CoopHandler{service: service}
}

// enrollmentView adds the derived lifecycle state to an enrollment.
type enrollmentView struct {
	*models.Enrollment
	State models.EnrollmentState `json:"state"`
}

type enrollmentDetailView struct {
	models.EnrollmentDetail
	State models.EnrollmentState `json:"state"`
}

func viewOf(e *models.Enrollment) enrollmentView {
	return enrollmentView{Enrollment: e, State: e.State()}
}

func detailViews(items []models.EnrollmentDetail) []enrollmentDetailView {
	views := make([]enrollmentDetailView, 0, len(items))
	for i := range items {
		views = append(views, enrollmentDetailView{EnrollmentDetail: items[i], State: items[i].Enrollment.State()})
	}
	return views
}

// MyEnrollments godoc
// @Summary List the student's co-op enrollments
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/coop/enrollments [get]
func (h *CoopHandler) MyEnrollments(c *gin.Context) {
	studentID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detailViews(items), nil)
}

// OptIn godoc
// @Summary Opt in for co-op credit
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.OptRequest true "Position reference"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student/coop/opt-in [post]
func (h *CoopHandler) OptIn(c *gin.Context) {
	h.optChange(c, h.service.OptIn)
}

// OptOut godoc
// @Summary Opt out of co-op credit
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.OptRequest true "Position reference"
// @Success 200 {object} response.Envelope
// @Router /student/coop/opt-out [post]
func (h *CoopHandler) OptOut(c *gin.Context) {
	h.optChange(c, h.service.OptOut)
}

func (h *CoopHandler) optChange(c *gin.Context, apply func(context.Context, int64, service.OptRequest) (*models.Enrollment, error)) {
	studentID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.OptRequest
	if err := bindJSON(c, &req, "invalid opt-in payload"); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := apply(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(enrollment), nil)
}

// Summary godoc
// @Summary Submit the co-op summary
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.SubmitSummaryRequest true "Summary payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student/coop/summary [post]
func (h *CoopHandler) Summary(c *gin.Context) {
	studentID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SubmitSummaryRequest
	if err := bindJSON(c, &req, "invalid summary payload"); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.service.SubmitSummary(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, viewOf(enrollment), nil)
}

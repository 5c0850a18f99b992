package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/service"
	"github.com/noah-isme/coop-portal-api/pkg/response"
)

type applicationService interface {
	Apply(ctx context.Context, studentID int64, req service.ApplyRequest) (*models.Application, error)
	ListForStudent(ctx context.Context, studentID int64) ([]models.StudentApplication, error)
	ListForPosition(ctx context.Context, employerID, positionID int64) ([]models.Applicant, error)
	UpdateStatus(ctx context.Context, employerID, applicationID int64, req service.UpdateApplicationStatusRequest) error
}

// ApplicationHandler serves student applications and employer review.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler builds an application handler.
func NewApplicationHandler(service applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Apply godoc
// @Summary Apply to a position
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.ApplyRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student/applications [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	studentID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ApplyRequest
	if err := bindJSON(c, &req, "invalid application payload"); err != nil {
		response.Error(c, err)
		return
	}
	application, err := h.service.Apply(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, application)
}

// Mine godoc
// @Summary List the student's applications
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/applications [get]
func (h *ApplicationHandler) Mine(c *gin.Context) {
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
	if items == nil {
		items = []models.StudentApplication{}
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListForPosition godoc
// @Summary List applicants for an owned position
// @Tags Employer
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} response.Envelope
// @Router /employer/positions/{id}/applications [get]
func (h *ApplicationHandler) ListForPosition(c *gin.Context) {
	employerID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	positionID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.ListForPosition(c.Request.Context(), employerID, positionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []models.Applicant{}
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UpdateStatus godoc
// @Summary Change an application's review status
// @Tags Employer
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body service.UpdateApplicationStatusRequest true "Status payload"
// @Success 204
// @Router /employer/applications/{id}/status [put]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	employerID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	applicationID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateApplicationStatusRequest
	if err := bindJSON(c, &req, "invalid status payload"); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.UpdateStatus(c.Request.Context(), employerID, applicationID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coop-portal-api/internal/service"
	"github.com/noah-isme/coop-portal-api/pkg/response"
)

type selectionService interface {
	Select(ctx context.Context, employerID, positionID int64, req service.SelectStudentRequest) (*service.SelectionResult, error)
}

// SelectionHandler lets employers pick a student for a position.
type SelectionHandler struct {
	service selectionService
}

// NewSelectionHandler builds a selection handler.
func NewSelectionHandler(service selectionService) *SelectionHandler {
	return &SelectionHandler{service: service}
}

// Select godoc
// @Summary Select a student for a position
// @Description Claims the position, marks the application selected and records the student's co-op eligibility.
// @Tags Employer
// @Accept json
// @Produce json
// @Param id path int true "Position ID"
// @Param payload body service.SelectStudentRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /employer/positions/{id}/select [post]
func (h *SelectionHandler) Select(c *gin.Context) {
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
	var req service.SelectStudentRequest
	if err := bindJSON(c, &req, "invalid selection payload"); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Select(c.Request.Context(), employerID, positionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

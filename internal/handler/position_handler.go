package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/service"
	"github.com/noah-isme/coop-portal-api/pkg/response"
)

type positionService interface {
	Create(ctx context.Context, employerID int64, req service.PositionRequest) (*models.PositionDetail, error)
	Update(ctx context.Context, employerID, positionID int64, req service.PositionRequest) (*models.PositionDetail, error)
	Get(ctx context.Context, positionID int64) (*models.PositionDetail, error)
	Search(ctx context.Context, filter models.PositionFilter) (*service.PositionSearchResult, bool, error)
	ListByEmployer(ctx context.Context, employerID int64) ([]models.PositionDetail, error)
}

// PositionHandler exposes the public listing and employer position management.
type PositionHandler struct {
	service positionService
}

// NewPositionHandler builds a position handler.
func NewPositionHandler(service positionService) *PositionHandler {
	return &PositionHandler{service: service}
}

// List godoc
// @Summary Search positions
// @Tags Positions
// @Produce json
// @Param status query string false "open, pending or closed"
// @Param employer query string false "Company name contains"
// @Param location query string false "Location contains"
// @Param major query string false "Major of interest contains"
// @Param skills query string false "Skills contain"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /positions [get]
func (h *PositionHandler) List(c *gin.Context) {
	filter := models.PositionFilter{
		Status:       models.PositionStatus(c.Query("status")),
		EmployerName: c.Query("employer"),
		Location:     c.Query("location"),
		Major:        c.Query("major"),
		Skills:       c.Query("skills"),
		Page:         intQuery(c, "page", 1),
		PageSize:     intQuery(c, "pageSize", 20),
	}
	if filter.PageSize > 100 {
		filter.PageSize = 20
	}
	result, hit, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: result.Total}
	response.JSON(c, http.StatusOK, result.Items, pagination, map[string]interface{}{"cacheHit": hit})
}

// Get godoc
// @Summary Get a position
// @Tags Positions
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} response.Envelope
// @Router /positions/{id} [get]
func (h *PositionHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	position, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, position, nil)
}

// Mine godoc
// @Summary List the employer's positions
// @Tags Employer
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employer/positions [get]
func (h *PositionHandler) Mine(c *gin.Context) {
	employerID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	positions, err := h.service.ListByEmployer(c.Request.Context(), employerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if positions == nil {
		positions = []models.PositionDetail{}
	}
	response.JSON(c, http.StatusOK, positions, nil)
}

// Create godoc
// @Summary Post a new position
// @Tags Employer
// @Accept json
// @Produce json
// @Param payload body service.PositionRequest true "Position payload"
// @Success 201 {object} response.Envelope
// @Router /employer/positions [post]
func (h *PositionHandler) Create(c *gin.Context) {
	employerID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.PositionRequest
	if err := bindJSON(c, &req, "invalid position payload"); err != nil {
		response.Error(c, err)
		return
	}
	position, err := h.service.Create(c.Request.Context(), employerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, position)
}

// Update godoc
// @Summary Update an owned position
// @Tags Employer
// @Accept json
// @Produce json
// @Param id path int true "Position ID"
// @Param payload body service.PositionRequest true "Position payload"
// @Success 200 {object} response.Envelope
// @Router /employer/positions/{id} [put]
func (h *PositionHandler) Update(c *gin.Context) {
	employerID, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.PositionRequest
	if err := bindJSON(c, &req, "invalid position payload"); err != nil {
		response.Error(c, err)
		return
	}
	position, err := h.service.Update(c.Request.Context(), employerID, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, position, nil)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/service"
	"github.com/noah-isme/coop-portal-api/pkg/response"
)

type profileService interface {
	Student(ctx context.Context, studentID int64) (*service.StudentProfile, error)
	Employer(ctx context.Context, employerID int64) (*models.Employer, error)
	Faculty(ctx context.Context, facultyID int64) (*models.Faculty, error)
}

// ProfileHandler returns the caller's own profile, picked by token role.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler builds a profile handler.
func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Me godoc
// @Summary Current user's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	id, err := actorID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	var profile interface{}
	switch claimsFromContext(c).Role {
	case models.RoleStudent:
		profile, err = h.service.Student(ctx, id)
	case models.RoleEmployer:
		profile, err = h.service.Employer(ctx, id)
	default:
		profile, err = h.service.Faculty(ctx, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

package summary

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"siteportal/internal/domain/project"
	"siteportal/internal/pkg/genai"
	"siteportal/internal/pkg/response"
	"siteportal/internal/pkg/validator"
)

type DraftRequest struct {
	Notes string `json:"notes" validate:"required,max=4000"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = []response.Mapping{
	{Err: ErrEmptyNotes, Status: http.StatusUnprocessableEntity, Code: "NOTES_REQUIRED"},
	{Err: project.ErrProjectNotFound, Status: http.StatusNotFound, Code: "PROJECT_NOT_FOUND"},
	{Err: project.ErrUpdateNotFound, Status: http.StatusNotFound, Code: "UPDATE_NOT_FOUND"},
	{Err: genai.ErrDisabled, Status: http.StatusServiceUnavailable, Code: "GENAI_DISABLED"},
	{Err: ErrGeneration, Status: http.StatusBadGateway, Code: "GENAI_FAILED"},
}

// Draft godoc
// @Summary Draft a weekly update summary (admin)
// @Description Generates the summary from notes and stores it on the update.
// @Tags Weekly Updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DraftRequest true "Notes"
// @Router /projects/{id}/updates/{updateId}/summary [post]
func (h *Handler) Draft(c *gin.Context) {
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}

	u, err := h.service.Draft(c.Request.Context(), c.Param("id"), c.Param("updateId"), req.Notes)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// RegisterRoutes mounts the drafter on a group that already enforces the admin role.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.POST("/projects/:id/updates/:updateId/summary", h.Draft)
}

package workspace

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"siteportal/internal/domain/project"
	"siteportal/internal/domain/upload"
	"siteportal/internal/pkg/response"
	"siteportal/internal/pkg/validator"
)

type Handler struct {
	registry *Registry
	access   project.AccessChecker
}

func NewHandler(registry *Registry, access project.AccessChecker) *Handler {
	return &Handler{registry: registry, access: access}
}

var errorMappings = []response.Mapping{
	{Err: project.ErrProjectNotFound, Status: http.StatusNotFound, Code: "PROJECT_NOT_FOUND"},
	{Err: project.ErrUpdateNotFound, Status: http.StatusNotFound, Code: "UPDATE_NOT_FOUND"},
	{Err: ErrInvalidView, Status: http.StatusUnprocessableEntity, Code: "INVALID_VIEW"},
	{Err: ErrNoActiveProject, Status: http.StatusConflict, Code: "NO_ACTIVE_PROJECT"},
	{Err: ErrClosed, Status: http.StatusServiceUnavailable, Code: "SHUTTING_DOWN"},
}

type ViewRequest struct {
	View View `json:"view" validate:"required,oneof=home detail profile"`
}

type SelectionRequest struct {
	ProjectID string `json:"project_id"`
	UpdateID  string `json:"update_id"`
}

type Workspace struct {
	Selection
	Uploads []upload.Item `json:"uploads"`
}

// Get godoc
// @Summary Current workspace (view, selection, upload queue)
// @Tags Workspace
// @Produce json
// @Security BearerAuth
// @Router /workspace [get]
func (h *Handler) Get(c *gin.Context) {
	s, err := h.registry.Session(c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, Workspace{Selection: s.State.Selection(), Uploads: s.Pipeline.Snapshot()})
}

// SetView godoc
// @Summary Switch view
// @Tags Workspace
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /workspace/view [put]
func (h *Handler) SetView(c *gin.Context) {
	var req ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}
	s, err := h.registry.Session(c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	if err := s.State.Navigate(req.View); err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, s.State.Selection())
}

// Select godoc
// @Summary Open a project and select a weekly update
// @Description Empty project_id closes the project; empty update_id selects the newest update.
// @Tags Workspace
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /workspace/selection [put]
func (h *Handler) Select(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	userID := c.GetInt64("user_id")

	if req.ProjectID == "" {
		s, err := h.registry.Session(userID)
		if err != nil {
			response.FromError(c, err, errorMappings...)
			return
		}
		s.State.Clear()
		response.Success(c, http.StatusOK, s.State.Selection())
		return
	}

	if c.GetString("role") != "admin" {
		unlocked := false
		if deviceID := c.GetString("device_id"); deviceID != "" && h.access != nil {
			var err error
			unlocked, err = h.access.IsUnlocked(c.Request.Context(), deviceID, req.ProjectID)
			if err != nil {
				response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
				return
			}
		}
		if !unlocked {
			response.CustomError(c, http.StatusForbidden, "PROJECT_LOCKED", "Enter the project access code to view it")
			return
		}
	}

	sel, err := h.registry.Open(c.Request.Context(), userID, req.ProjectID, req.UpdateID)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, sel)
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	ws := protected.Group("/workspace")
	{
		ws.GET("", h.Get)
		ws.PUT("/view", h.SetView)
		ws.PUT("/selection", h.Select)
	}
}

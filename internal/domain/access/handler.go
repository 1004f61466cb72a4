package access

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"siteportal/internal/domain/project"
	"siteportal/internal/pkg/response"
	"siteportal/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = []response.Mapping{
	{Err: project.ErrProjectNotFound, Status: http.StatusNotFound, Code: "PROJECT_NOT_FOUND"},
	{Err: ErrInvalidCode, Status: http.StatusForbidden, Code: "INVALID_ACCESS_CODE"},
	{Err: ErrDeviceRequired, Status: http.StatusBadRequest, Code: "DEVICE_REQUIRED"},
	{Err: ErrInvalidLanguage, Status: http.StatusUnprocessableEntity, Code: "INVALID_LANGUAGE"},
}

// Unlock godoc
// @Summary Unlock a project with its access code
// @Tags Access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device ID"
// @Param id path string true "Project ID"
// @Param request body UnlockRequest true "Access code"
// @Success 200 {object} response.Response{data=UnlockResponse}
// @Failure 403 {object} response.Response
// @Router /projects/{id}/unlock [post]
func (h *Handler) Unlock(c *gin.Context) {
	var req UnlockRequest
	admin := c.GetString("role") == "admin"
	if !admin {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
			return
		}
		if errs := validator.Validate(&req); errs != nil {
			response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
			return
		}
	}

	id := c.Param("id")
	state, err := h.service.Unlock(c.Request.Context(), c.GetString("device_id"), admin, id, req.Code)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, UnlockResponse{ProjectID: id, State: state})
}

// ListUnlocked godoc
// @Summary Project ids unlocked on this device
// @Tags Access
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device ID"
// @Router /unlocked [get]
func (h *Handler) ListUnlocked(c *gin.Context) {
	ids, err := h.service.Unlocked(c.Request.Context(), c.GetString("device_id"))
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"project_ids": ids})
}

// GetLanguage godoc
// @Summary Interface language of this device
// @Tags Preferences
// @Produce json
// @Router /preferences/language [get]
func (h *Handler) GetLanguage(c *gin.Context) {
	lang, err := h.service.Language(c.Request.Context(), c.GetString("device_id"))
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"language": lang})
}

// SetLanguage godoc
// @Summary Change interface language of this device
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body LanguageRequest true "Language"
// @Router /preferences/language [put]
func (h *Handler) SetLanguage(c *gin.Context) {
	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return
	}
	lang, err := h.service.SetLanguage(c.Request.Context(), c.GetString("device_id"), req.Language)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"language": lang})
}

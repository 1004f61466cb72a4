package project

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"siteportal/internal/pkg/response"
	"siteportal/internal/pkg/validator"
)

// AccessChecker answers whether a device has unlocked a project.
type AccessChecker interface {
	IsUnlocked(ctx context.Context, deviceID, projectID string) (bool, error)
}

// Handler serves project reads for everyone and project editing for admins.
type Handler struct {
	service *Service
	access  AccessChecker
}

func NewHandler(service *Service, access AccessChecker) *Handler {
	return &Handler{service: service, access: access}
}

var errorMappings = []response.Mapping{
	{Err: ErrProjectNotFound, Status: http.StatusNotFound, Code: "PROJECT_NOT_FOUND"},
	{Err: ErrUpdateNotFound, Status: http.StatusNotFound, Code: "UPDATE_NOT_FOUND"},
	{Err: ErrUnknownField, Status: http.StatusBadRequest, Code: "UNKNOWN_FIELD"},
	{Err: ErrInvalidValue, Status: http.StatusBadRequest, Code: "INVALID_VALUE"},
	{Err: ErrInvalidCompletion, Status: http.StatusUnprocessableEntity, Code: "INVALID_COMPLETION"},
	{Err: ErrInvalidWorkers, Status: http.StatusUnprocessableEntity, Code: "INVALID_WORKERS"},
	{Err: ErrInvalidWeek, Status: http.StatusUnprocessableEntity, Code: "INVALID_WEEK"},
	{Err: ErrInvalidDate, Status: http.StatusUnprocessableEntity, Code: "INVALID_DATE"},
	{Err: ErrInvalidMediaKind, Status: http.StatusUnprocessableEntity, Code: "INVALID_MEDIA_KIND"},
	{Err: ErrInvalidAccessCode, Status: http.StatusUnprocessableEntity, Code: "INVALID_ACCESS_CODE"},
	{Err: ErrEmptyMediaLocation, Status: http.StatusUnprocessableEntity, Code: "MEDIA_URL_REQUIRED"},
}

// ProjectCard is the list entry shown to non-admin viewers.
type ProjectCard struct {
	*Project
	Unlocked bool `json:"unlocked"`
}

// List godoc
// @Summary List projects
// @Description Admins receive full records; other viewers receive cards with an unlocked flag.
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Router /projects [get]
func (h *Handler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context())
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	if isAdmin(c) {
		response.Success(c, http.StatusOK, projects)
		return
	}

	deviceID := c.GetString("device_id")
	cards := make([]ProjectCard, 0, len(projects))
	for _, p := range projects {
		unlocked, err := h.unlocked(c, deviceID, p.ID)
		if err != nil {
			response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
			return
		}
		card := ProjectCard{Project: p.Public(), Unlocked: unlocked}
		if unlocked {
			card.Project = p.ForViewer()
		}
		cards = append(cards, card)
	}
	response.Success(c, http.StatusOK, cards)
}

// Get godoc
// @Summary Get project detail
// @Description Requires admin role or a device that unlocked the project.
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Router /projects/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, ok := h.loadVisible(c, c.Param("id"))
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Create godoc
// @Summary Create project (admin)
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProjectRequest true "Project"
// @Router /projects [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// Update godoc
// @Summary Update project details (admin)
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Router /projects/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.service.UpdateDetails(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Delete godoc
// @Summary Delete project (admin)
// @Tags Projects
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Router /projects/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "deleted"})
}

// AddWeek godoc
// @Summary Prepend a weekly update (admin)
// @Tags Weekly Updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Router /projects/{id}/updates [post]
func (h *Handler) AddWeek(c *gin.Context) {
	var req AddWeekRequest
	if !bindAndValidate(c, &req) {
		return
	}
	u, err := h.service.AddWeek(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

// UpdateField godoc
// @Summary Edit one field of a weekly update (admin)
// @Description Body: {"field": "stats.completion", "value": 40}
// @Tags Weekly Updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /projects/{id}/updates/{updateId} [patch]
func (h *Handler) UpdateField(c *gin.Context) {
	var req UpdateFieldRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, err := DecodeFieldUpdate(req.Field, req.Value)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	u, err := h.service.ApplyField(c.Request.Context(), c.Param("id"), c.Param("updateId"), op)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// AddMedia godoc
// @Summary Attach media by URL (admin)
// @Tags Weekly Updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /projects/{id}/updates/{updateId}/media [post]
func (h *Handler) AddMedia(c *gin.Context) {
	var req AddMediaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.service.AddMediaURL(c.Request.Context(), c.Param("id"), c.Param("updateId"), &req)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// loadVisible fetches a project and shapes it for the caller, writing the error
// response itself when the caller may not see it.
func (h *Handler) loadVisible(c *gin.Context, id string) (*Project, bool) {
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return nil, false
	}
	if isAdmin(c) {
		return p, true
	}
	unlocked, err := h.unlocked(c, c.GetString("device_id"), p.ID)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return nil, false
	}
	if !unlocked {
		response.CustomError(c, http.StatusForbidden, "PROJECT_LOCKED", "Enter the project access code to view it")
		return nil, false
	}
	return p.ForViewer(), true
}

func (h *Handler) unlocked(c *gin.Context, deviceID, projectID string) (bool, error) {
	if deviceID == "" || h.access == nil {
		return false, nil
	}
	return h.access.IsUnlocked(c.Request.Context(), deviceID, projectID)
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return false
	}
	return true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("role") == "admin"
}

package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"siteportal/internal/pkg/response"
	"siteportal/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var errorMappings = []response.Mapping{
	{Err: ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS"},
	{Err: ErrEmailAlreadyExists, Status: http.StatusConflict, Code: "EMAIL_EXISTS"},
	{Err: ErrUserNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
	{Err: ErrUnauthorized, Status: http.StatusUnauthorized, Code: "UNAUTHORIZED"},
}

// Register godoc
// @Summary		Register client
// @Description	Creates a client account. Administrators are created with portalctl.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	RegisterRequest	true	"payload"
// @Success		201	{object}		map[string]interface{}
// @Failure		409	{object}		map[string]interface{}
// @Router		/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// @Summary		Login
// @Description	Exchanges email and password for a bearer token.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		request	body	LoginRequest	true	"credentials"
// @Success		200	{object}		map[string]interface{}
// @Failure		401	{object}		map[string]interface{}
// @Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user": result.User,
		"tokens": gin.H{
			"access_token": result.AccessToken,
			"expires_at":   result.ExpiresAt,
		},
	})
}

// Me godoc
// @Summary		Current user
// @Tags		Auth
// @Security	BearerAuth
// @Produce		json
// @Router		/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "role": user.Role()})
}

// Logout godoc
// @Summary		Logout
// @Description	Revokes the bearer token and ends the workspace session.
// @Tags		Auth
// @Security	BearerAuth
// @Success		204	"No Content"
// @Router		/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	expires, _ := c.Get("session_expires")
	exp, _ := expires.(time.Time)
	session := Session{
		ID:        c.GetString("session_id"),
		UserID:    c.GetInt64("user_id"),
		ExpiresAt: exp,
	}
	if err := h.service.Logout(c.Request.Context(), session); err != nil {
		response.FromError(c, err, errorMappings...)
		return
	}
	c.Status(http.StatusNoContent)
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errs)
		return false
	}
	return true
}

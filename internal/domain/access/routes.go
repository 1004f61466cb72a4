package access

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the unlock flow. unlockLimit guards the code check
// against guessing and may be nil.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, unlockLimit gin.HandlerFunc) {
	unlock := []gin.HandlerFunc{h.Unlock}
	if unlockLimit != nil {
		unlock = append([]gin.HandlerFunc{unlockLimit}, unlock...)
	}
	protected.POST("/projects/:id/unlock", unlock...)
	protected.GET("/unlocked", h.ListUnlocked)
}

// RegisterPreferenceRoutes mounts device preferences, which need no account.
func (h *Handler) RegisterPreferenceRoutes(public *gin.RouterGroup) {
	prefs := public.Group("/preferences")
	{
		prefs.GET("/language", h.GetLanguage)
		prefs.PUT("/language", h.SetLanguage)
	}
}

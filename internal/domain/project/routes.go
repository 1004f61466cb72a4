package project

import "github.com/gin-gonic/gin"

// RegisterRoutes registers viewer routes on the authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	projects := protected.Group("/projects")
	{
		projects.GET("", h.List)
		projects.GET("/:id", h.Get)
		projects.GET("/:id/stream", h.Stream)
	}
}

// RegisterAdminRoutes registers editing routes; the group must already enforce the admin role.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	projects := admin.Group("/projects")
	{
		projects.POST("", h.Create)
		projects.PUT("/:id", h.Update)
		projects.DELETE("/:id", h.Delete)
		projects.POST("/:id/updates", h.AddWeek)
		projects.PATCH("/:id/updates/:updateId", h.UpdateField)
		projects.POST("/:id/updates/:updateId/media", h.AddMedia)
	}
}

package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the queue endpoints on an admin-only group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	uploads := admin.Group("/workspace/uploads")
	{
		uploads.POST("", h.Enqueue)
		uploads.GET("", h.List)
	}
}

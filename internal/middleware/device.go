package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"siteportal/internal/pkg/response"
)

const DeviceHeader = "X-Device-ID"

// DeviceID reads the client device identifier from the X-Device-ID header or
// the "device" query parameter and stores it as device_id. The identifier is
// optional; when present it must be a uuid.
func DeviceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(DeviceHeader))
		if raw == "" {
			raw = strings.TrimSpace(c.Query("device"))
		}
		if raw == "" {
			c.Next()
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			response.CustomError(c, http.StatusBadRequest, "INVALID_DEVICE_ID", "X-Device-ID must be a uuid")
			c.Abort()
			return
		}
		c.Set("device_id", id.String())
		c.Next()
	}
}

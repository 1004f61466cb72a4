package access

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := setupTestService(t)
	h := NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set("role", role)
		}
		if device := c.GetHeader("X-Device-ID"); device != "" {
			c.Set("device_id", device)
		}
		c.Next()
	})
	v1 := r.Group("/api/v1")
	h.RegisterRoutes(v1, nil)
	h.RegisterPreferenceRoutes(v1)
	return r
}

func post(r http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestUnlockEndpoint(t *testing.T) {
	r := setupTestRouter(t)
	client := map[string]string{"X-Test-Role": "client", "X-Device-ID": "d1"}

	rr := post(r, "/api/v1/projects/p1/unlock", gin.H{"code": "0000"}, client)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_ACCESS_CODE")

	rr = post(r, "/api/v1/projects/p1/unlock", gin.H{"code": "1111"}, client)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"unlocked"`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unlocked", nil)
	req.Header.Set("X-Device-ID", "d1")
	list := httptest.NewRecorder()
	r.ServeHTTP(list, req)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"project_ids":["p1"]`)
}

func TestUnlockEndpoint_RequiresDevice(t *testing.T) {
	r := setupTestRouter(t)

	rr := post(r, "/api/v1/projects/p1/unlock", gin.H{"code": "1111"}, map[string]string{"X-Test-Role": "client"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "DEVICE_REQUIRED")
}

func TestUnlockEndpoint_AdminNeedsNoCode(t *testing.T) {
	r := setupTestRouter(t)

	rr := post(r, "/api/v1/projects/p2/unlock", nil, map[string]string{"X-Test-Role": "admin"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"unlocked"`)
}

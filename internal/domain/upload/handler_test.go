package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedQueues struct {
	p *Pipeline
}

func (q fixedQueues) Pipeline(int64) (*Pipeline, error) { return q.p, nil }

func setupUploadRouter(t *testing.T, p *Pipeline, spoolDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", int64(7))
		c.Next()
	})
	NewHandler(fixedQueues{p: p}, spoolDir).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestEnqueueHandler(t *testing.T) {
	h := setupPipeline(t, Config{MaxFileSize: 8})
	spool := t.TempDir()
	r := setupUploadRouter(t, h.pipeline, spool)

	body, contentType := multipartBody(t, map[string][]byte{
		"small.jpg": []byte("12345678"),
		"big.jpg":   []byte("123456789"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var resp struct {
		Data EnqueueResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Accepted, 1)
	assert.Equal(t, "small.jpg", resp.Data.Accepted[0].Name)
	require.Len(t, resp.Data.Rejected, 1)
	assert.Equal(t, "big.jpg", resp.Data.Rejected[0].Name)
	assert.Len(t, resp.Data.Queue, 1)

	entries, err := os.ReadDir(spool)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnqueueHandler_OversizedPartIsNotSpooled(t *testing.T) {
	h := setupPipeline(t, Config{MaxFileSize: 8})
	// any attempt to spool into a missing directory fails the request
	spool := filepath.Join(t.TempDir(), "missing")
	r := setupUploadRouter(t, h.pipeline, spool)

	body, contentType := multipartBody(t, map[string][]byte{"big.jpg": []byte("123456789")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var resp struct {
		Data EnqueueResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Accepted)
	require.Len(t, resp.Data.Rejected, 1)
	assert.Equal(t, "big.jpg", resp.Data.Rejected[0].Name)
	assert.Equal(t, ErrFileTooLarge.Error(), resp.Data.Rejected[0].Reason)
	assert.Empty(t, h.pipeline.Snapshot())

	_, err := os.Stat(spool)
	assert.True(t, os.IsNotExist(err))
}

func TestEnqueueHandler_NoFiles(t *testing.T) {
	h := setupPipeline(t, Config{})
	r := setupUploadRouter(t, h.pipeline, t.TempDir())

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "NO_FILES")
}

func TestListHandler(t *testing.T) {
	h := setupPipeline(t, Config{})
	h.pipeline.Enqueue(nil)
	r := setupUploadRouter(t, h.pipeline, t.TempDir())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/workspace/uploads", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rr.Body.String())
}

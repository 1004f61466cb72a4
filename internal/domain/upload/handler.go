package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"siteportal/internal/blob"
	"siteportal/internal/pkg/response"
)

// Queues hands out the upload pipeline owned by a signed-in user.
type Queues interface {
	Pipeline(userID int64) (*Pipeline, error)
}

type Handler struct {
	queues   Queues
	spoolDir string
}

func NewHandler(queues Queues, spoolDir string) *Handler {
	return &Handler{queues: queues, spoolDir: spoolDir}
}

type EnqueueResponse struct {
	Accepted []Item      `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
	Queue    []Item      `json:"queue"`
}

// Enqueue godoc
// @Summary Queue files for the active weekly update (admin)
// @Description Files go to the update selected when each one starts uploading.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files to upload"
// @Success 202 {object} response.Response{data=EnqueueResponse}
// @Failure 400,401,403 {object} response.Response
// @Router /workspace/uploads [post]
func (h *Handler) Enqueue(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		response.CustomError(c, http.StatusBadRequest, "NO_FILES", ErrNoFiles.Error())
		return
	}

	pipeline, err := h.queues.Pipeline(userID)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	headers := form.File["files"]
	files := make([]blob.File, 0, len(headers))
	var early []Rejection
	for _, fh := range headers {
		if rej, ok := pipeline.Oversized(fh.Filename, fh.Size); ok {
			early = append(early, rej)
			continue
		}
		f, err := Spool(h.spoolDir, fh)
		if err != nil {
			for _, spooled := range files {
				release(spooled)
			}
			response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
			return
		}
		files = append(files, f)
	}

	accepted, rejected := pipeline.Enqueue(files)
	rejected = append(early, rejected...)
	if rejected == nil {
		rejected = []Rejection{}
	}
	response.Success(c, http.StatusAccepted, EnqueueResponse{
		Accepted: accepted,
		Rejected: rejected,
		Queue:    pipeline.Snapshot(),
	})
}

// List godoc
// @Summary Current upload queue (admin)
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]Item}
// @Router /workspace/uploads [get]
func (h *Handler) List(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	pipeline, err := h.queues.Pipeline(userID)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	response.Success(c, http.StatusOK, pipeline.Snapshot())
}

func mustUserID(c *gin.Context) int64 {
	id, exists := c.Get("user_id")
	if !exists {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return 0
	}
	switch v := id.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	return 0
}

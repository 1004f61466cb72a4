package upload

import (
	"context"

	"siteportal/internal/blob"
	"siteportal/internal/domain/project"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Terminal reports whether the item will not change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Item is one queued file. Items are process-local and never persisted.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Progress    int    `json:"progress"`
	Status      Status `json:"status"`
	Error       string `json:"error,omitempty"`
	// MediaID is set once the item's media entry was written.
	MediaID string `json:"media_id,omitempty"`

	file blob.File
}

// Rejection is a file refused at admission.
type Rejection struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Target names the weekly update new media goes to. ok is false while no
// project or update is selected.
type Target interface {
	Target() (projectID, updateID string, ok bool)
	// Changed returns a channel closed on the next selection change.
	Changed() <-chan struct{}
}

// MediaWriter records a media item on a weekly update with a whole-project write.
type MediaWriter interface {
	PrependMedia(ctx context.Context, projectID, updateID string, item project.MediaItem) error
}

// removable is implemented by files backed by a temporary copy.
type removable interface {
	Remove() error
}

func release(f blob.File) {
	if r, ok := f.(removable); ok {
		_ = r.Remove()
	}
}

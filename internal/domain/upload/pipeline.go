package upload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"siteportal/internal/blob"
	"siteportal/internal/domain/project"
	"siteportal/internal/pkg/metrics"
)

const (
	DefaultMaxFileSize = 200 * 1024 * 1024 // 200 MiB
	DefaultSettleDelay = 500 * time.Millisecond
	DefaultClearDelay  = 3 * time.Second
)

type Config struct {
	MaxFileSize int64
	SettleDelay time.Duration
	ClearDelay  time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.ClearDelay <= 0 {
		c.ClearDelay = DefaultClearDelay
	}
	return c
}

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithOnChange registers a hook that receives a snapshot after every queue
// transition. It runs with the queue locked and must not call back into the
// pipeline or block.
func WithOnChange(fn func([]Item)) Option {
	return func(p *Pipeline) { p.onChange = fn }
}

// Pipeline is a FIFO upload queue drained by a single worker. Each item is
// written to the blob store and then prepended to the media of the weekly
// update selected when the item starts.
type Pipeline struct {
	cfg      Config
	blobs    blob.Store
	media    MediaWriter
	target   Target
	logger   *slog.Logger
	onChange func([]Item)
	now      func() time.Time

	mu       sync.Mutex
	items    []*Item
	closed   bool
	clear    *time.Timer
	clearGen uint64

	wake chan struct{}
}

func New(cfg Config, blobs blob.Store, media MediaWriter, target Target, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg.withDefaults(),
		blobs:  blobs,
		media:  media,
		target: target,
		logger: slog.Default(),
		now:    time.Now,
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enqueue admits files in order. Files larger than MaxFileSize are rejected
// one by one; the rest are queued as pending. A scheduled auto-clear is
// cancelled. No project is modified here.
func (p *Pipeline) Enqueue(files []blob.File) ([]Item, []Rejection) {
	p.mu.Lock()
	defer p.mu.Unlock()

	accepted := make([]Item, 0, len(files))
	var rejected []Rejection
	for _, f := range files {
		var err error
		switch {
		case p.closed:
			err = ErrPipelineClosed
		case f.Size() > p.cfg.MaxFileSize:
			err = ErrFileTooLarge
		}
		if err != nil {
			rejected = append(rejected, Rejection{Name: f.Name(), Size: f.Size(), Reason: err.Error(), Err: err})
			metrics.UploadItemsTotal.WithLabelValues("rejected").Inc()
			release(f)
			continue
		}

		item := &Item{
			ID:          uuid.NewString(),
			Name:        f.Name(),
			Size:        f.Size(),
			ContentType: f.ContentType(),
			Status:      StatusPending,
			file:        f,
		}
		p.items = append(p.items, item)
		accepted = append(accepted, *item)
	}

	if len(accepted) > 0 {
		p.cancelClearLocked()
		p.emitLocked()
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
	return accepted, rejected
}

// Oversized returns the rejection admission would produce for a file of size
// bytes, letting callers skip copying it. Enqueue applies the same limit.
func (p *Pipeline) Oversized(name string, size int64) (Rejection, bool) {
	if size <= p.cfg.MaxFileSize {
		return Rejection{}, false
	}
	metrics.UploadItemsTotal.WithLabelValues("rejected").Inc()
	return Rejection{Name: name, Size: size, Reason: ErrFileTooLarge.Error(), Err: ErrFileTooLarge}, true
}

// Snapshot returns a copy of the queue in insertion order.
func (p *Pipeline) Snapshot() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Run drains the queue until ctx is done. Only one Run may be active per
// pipeline; after it returns the pipeline refuses new files.
func (p *Pipeline) Run(ctx context.Context) {
	defer p.shutdown()

	stalled := false
	for {
		id, ok := p.nextPending()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-p.wake:
				continue
			}
		}

		changed := p.target.Changed()
		projectID, updateID, ok := p.target.Target()
		if !ok {
			if !stalled {
				p.logger.Info("upload queue waiting for a selection", "error", ErrNoActiveTarget)
				stalled = true
			}
			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
			continue
		}
		stalled = false

		p.process(ctx, id, projectID, updateID)

		if p.cfg.SettleDelay > 0 {
			t := time.NewTimer(p.cfg.SettleDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
	}
}

func (p *Pipeline) nextPending() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, it := range p.items {
		if it.Status == StatusPending {
			return it.ID, true
		}
	}
	return "", false
}

func (p *Pipeline) process(ctx context.Context, id, projectID, updateID string) {
	p.mu.Lock()
	item := p.findLocked(id)
	if item == nil {
		p.mu.Unlock()
		return
	}
	item.Status = StatusUploading
	f := item.file
	p.emitLocked()
	p.mu.Unlock()

	log := p.logger.With("item_id", id, "file", f.Name(), "project_id", projectID, "update_id", updateID)

	media, err := p.persist(ctx, f, projectID, updateID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		log.Warn("upload failed", "error", err)
		item.Status = StatusError
		item.Error = err.Error()
		metrics.UploadItemsTotal.WithLabelValues("error").Inc()
	} else {
		log.Info("upload stored", "media_id", media.ID, "url", media.URL)
		item.Status = StatusCompleted
		item.Progress = 100
		item.MediaID = media.ID
		metrics.UploadItemsTotal.WithLabelValues("completed").Inc()
		metrics.UploadBytesTotal.Add(float64(f.Size()))
	}
	item.file = nil
	release(f)

	p.emitLocked()
	if p.allTerminalLocked() {
		p.scheduleClearLocked()
	}
}

// persist stores the blob then records the media entry. Either failure is
// reported as ErrPersistence; a stored blob whose media write failed is left
// orphaned in the namespace.
func (p *Pipeline) persist(ctx context.Context, f blob.File, projectID, updateID string) (project.MediaItem, error) {
	locator, err := p.blobs.Put(ctx, projectID, f)
	if err != nil {
		return project.MediaItem{}, fmt.Errorf("%w: store blob: %w", ErrPersistence, err)
	}

	item := project.MediaItem{
		ID:   project.NewMediaID(p.now()),
		Kind: KindFor(f.ContentType()),
		URL:  locator,
	}
	if item.Kind != project.MediaVideo {
		item.ThumbnailURL = locator
	}
	if err := p.media.PrependMedia(ctx, projectID, updateID, item); err != nil {
		return project.MediaItem{}, fmt.Errorf("%w: write project: %w", ErrPersistence, err)
	}
	return item, nil
}

// KindFor classifies a declared content type. Anything that is not video is a photo.
func KindFor(contentType string) project.MediaKind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/") {
		return project.MediaVideo
	}
	return project.MediaPhoto
}

func (p *Pipeline) allTerminalLocked() bool {
	if len(p.items) == 0 {
		return false
	}
	for _, it := range p.items {
		if !it.Status.Terminal() {
			return false
		}
	}
	return true
}

func (p *Pipeline) scheduleClearLocked() {
	p.cancelClearLocked()
	gen := p.clearGen
	p.clear = time.AfterFunc(p.cfg.ClearDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.clearGen || !p.allTerminalLocked() {
			return
		}
		p.items = nil
		p.clear = nil
		p.emitLocked()
	})
}

func (p *Pipeline) cancelClearLocked() {
	p.clearGen++
	if p.clear != nil {
		p.clear.Stop()
		p.clear = nil
	}
}

func (p *Pipeline) findLocked(id string) *Item {
	for _, it := range p.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (p *Pipeline) snapshotLocked() []Item {
	out := make([]Item, len(p.items))
	for i, it := range p.items {
		out[i] = *it
		out[i].file = nil
	}
	return out
}

func (p *Pipeline) emitLocked() {
	if p.onChange != nil {
		p.onChange(p.snapshotLocked())
	}
}

// shutdown stops the clear timer, refuses further files and releases every
// spooled file still held by the queue.
func (p *Pipeline) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cancelClearLocked()
	for _, it := range p.items {
		if it.file != nil {
			release(it.file)
			it.file = nil
		}
	}
}

// Closed reports whether the worker has stopped.
func (p *Pipeline) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

package workspace

import (
	"context"
	"log/slog"
	"sync"

	"siteportal/internal/blob"
	"siteportal/internal/domain/project"
	"siteportal/internal/domain/upload"
)

// Projects is what the workspace reads from the content store.
type Projects interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	Subscribe(onChange func([]*project.Project)) (unsubscribe func())
}

// Session is one signed-in user's workspace: navigation state plus the upload
// queue that targets it.
type Session struct {
	State    *State
	Pipeline *upload.Pipeline

	cancel context.CancelFunc
	done   chan struct{}
}

// Registry owns a Session per user. Sessions are created on first use and
// dropped when the user logs out.
type Registry struct {
	ctx      context.Context
	cfg      upload.Config
	blobs    blob.Store
	media    upload.MediaWriter
	projects Projects
	logger   *slog.Logger

	mu          sync.Mutex
	sessions    map[int64]*Session
	closed      bool
	unsubscribe func()
}

func NewRegistry(ctx context.Context, cfg upload.Config, blobs blob.Store, media upload.MediaWriter, projects Projects, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		ctx:      ctx,
		cfg:      cfg,
		blobs:    blobs,
		media:    media,
		projects: projects,
		logger:   logger,
		sessions: make(map[int64]*Session),
	}
	r.unsubscribe = projects.Subscribe(r.reconcile)
	return r
}

// Session returns the user's session, starting its upload worker if needed.
func (r *Registry) Session(userID int64) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if s, ok := r.sessions[userID]; ok {
		return s, nil
	}

	ctx, cancel := context.WithCancel(r.ctx)
	state := NewState()
	log := r.logger.With("user_id", userID)
	s := &Session{
		State:    state,
		Pipeline: upload.New(r.cfg, r.blobs, r.media, state, upload.WithLogger(log)),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		s.Pipeline.Run(ctx)
	}()
	r.sessions[userID] = s
	log.Debug("workspace session started")
	return s, nil
}

// Pipeline returns the user's upload queue.
func (r *Registry) Pipeline(userID int64) (*upload.Pipeline, error) {
	s, err := r.Session(userID)
	if err != nil {
		return nil, err
	}
	return s.Pipeline, nil
}

// Drop stops the user's upload worker and forgets the session. Pending items
// are discarded. The workspace belongs to the account, so a logout from any
// device ends it for every device.
func (r *Registry) Drop(userID int64) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if !ok {
		return
	}
	s.cancel()
	<-s.done
	r.logger.Debug("workspace session dropped", "user_id", userID)
}

// Close drops every session and stops listening to the store.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[int64]*Session)
	r.mu.Unlock()

	r.unsubscribe()
	for _, s := range sessions {
		s.cancel()
	}
	for _, s := range sessions {
		<-s.done
	}
}

// Open selects a project and one of its updates; an empty updateID selects
// the newest one.
func (r *Registry) Open(ctx context.Context, userID int64, projectID, updateID string) (Selection, error) {
	p, err := r.projects.Get(ctx, projectID)
	if err != nil {
		return Selection{}, err
	}
	if updateID == "" {
		if latest, ok := p.Latest(); ok {
			updateID = latest.ID
		}
	} else if p.UpdateIndex(updateID) < 0 {
		return Selection{}, project.ErrUpdateNotFound
	}

	s, err := r.Session(userID)
	if err != nil {
		return Selection{}, err
	}
	s.State.Open(p.ID, updateID)
	return s.State.Selection(), nil
}

// reconcile keeps selections valid after store changes: a deleted project is
// closed and a removed update falls back to the newest remaining one.
func (r *Registry) reconcile(projects []*project.Project) {
	byID := make(map[string]*project.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	r.mu.Lock()
	states := make([]*State, 0, len(r.sessions))
	for _, s := range r.sessions {
		states = append(states, s.State)
	}
	r.mu.Unlock()

	for _, st := range states {
		sel := st.Selection()
		if sel.ProjectID == "" {
			continue
		}
		p, ok := byID[sel.ProjectID]
		if !ok {
			st.repair(sel.ProjectID, false, nil)
			continue
		}
		ids := make([]string, len(p.Updates))
		for i, u := range p.Updates {
			ids[i] = u.ID
		}
		st.repair(sel.ProjectID, true, ids)
	}
}

package project

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the content store client: whole-record persistence of projects plus
// change notification. Snapshots handed to subscribers are shared and must be
// treated as read-only.
type Store interface {
	List(ctx context.Context) ([]*Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	Put(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	Subscribe(onChange func([]*Project)) (unsubscribe func())
}

type store struct {
	db  *gorm.DB
	now func() time.Time

	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func([]*Project)
}

func NewStore(db *gorm.DB) Store {
	return &store{
		db:          db,
		now:         time.Now,
		subscribers: make(map[int]func([]*Project)),
	}
}

func (s *store) List(ctx context.Context) ([]*Project, error) {
	var projects []*Project
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&projects).Error
	return projects, err
}

func (s *store) Get(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Put replaces the stored record with p (insert or overwrite). No merge is
// attempted; the last writer wins.
func (s *store) Put(ctx context.Context, p *Project) error {
	now := s.now().UTC().Truncate(time.Microsecond)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(p).Error
	if err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	s.publish(ctx)
	return nil
}

// Subscribe registers onChange to receive the full project list after every
// successful write. onChange runs on the writer's goroutine and must not block.
func (s *store) Subscribe(onChange func([]*Project)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
		})
	}
}

func (s *store) publish(ctx context.Context) {
	s.mu.RLock()
	fns := make([]func([]*Project), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	if len(fns) == 0 {
		return
	}

	projects, err := s.List(context.WithoutCancel(ctx))
	if err != nil {
		slog.Warn("project change fan-out skipped", "error", err)
		return
	}
	for _, fn := range fns {
		fn(projects)
	}
}

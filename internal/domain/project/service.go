package project

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

const mediaIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewMediaID derives a media identifier from the current time plus a short
// random suffix. Collisions are possible but negligible at portal scale.
func NewMediaID(now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d-", now.UnixMilli()))
	for i := 0; i < 7; i++ {
		b.WriteByte(mediaIDAlphabet[rand.IntN(len(mediaIDAlphabet))])
	}
	return b.String()
}

// Service holds project administration and the weekly update editor. Every
// mutation is a read-modify-write of the whole project through the Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.store.Get(ctx, id)
}

// Create stores a new project seeded with one weekly update.
func (s *Service) Create(ctx context.Context, req *CreateProjectRequest) (*Project, error) {
	if strings.TrimSpace(req.AccessCode) == "" {
		return nil, ErrInvalidAccessCode
	}
	p := &Project{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		ClientName:   strings.TrimSpace(req.ClientName),
		Location:     strings.TrimSpace(req.Location),
		ThumbnailURL: req.ThumbnailURL,
		AccessCode:   req.AccessCode,
		Description:  req.Description,
		Updates:      []WeeklyUpdate{s.newUpdate(1, "", "")},
	}
	if err := s.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *Service) UpdateDetails(ctx context.Context, id string, req *UpdateProjectRequest) (*Project, error) {
	return s.mutate(ctx, id, func(p *Project) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.ClientName != nil {
			p.ClientName = strings.TrimSpace(*req.ClientName)
		}
		if req.Location != nil {
			p.Location = strings.TrimSpace(*req.Location)
		}
		if req.ThumbnailURL != nil {
			p.ThumbnailURL = *req.ThumbnailURL
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.AccessCode != nil {
			if strings.TrimSpace(*req.AccessCode) == "" {
				return ErrInvalidAccessCode
			}
			p.AccessCode = *req.AccessCode
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// AddWeek prepends a new weekly update. Week defaults to the highest existing
// week plus one and date defaults to today.
func (s *Service) AddWeek(ctx context.Context, projectID string, req *AddWeekRequest) (*WeeklyUpdate, error) {
	var created WeeklyUpdate
	_, err := s.mutate(ctx, projectID, func(p *Project) error {
		week := 1
		for _, u := range p.Updates {
			if u.Week >= week {
				week = u.Week + 1
			}
		}
		if req.Week != nil {
			if *req.Week < 1 {
				return ErrInvalidWeek
			}
			week = *req.Week
		}
		if req.Date != "" {
			if _, err := time.Parse(dateLayout, req.Date); err != nil {
				return ErrInvalidDate
			}
		}
		created = s.newUpdate(week, req.Date, req.Title)
		p.Updates = append([]WeeklyUpdate{created}, p.Updates...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ApplyField runs one editor operation against one weekly update and writes the
// whole project back. Other updates are left untouched.
func (s *Service) ApplyField(ctx context.Context, projectID, updateID string, op FieldUpdate) (*WeeklyUpdate, error) {
	var updated WeeklyUpdate
	_, err := s.mutate(ctx, projectID, func(p *Project) error {
		idx := p.UpdateIndex(updateID)
		if idx < 0 {
			return ErrUpdateNotFound
		}
		next, err := op.Apply(p.Updates[idx])
		if err != nil {
			return err
		}
		p.Updates[idx] = next
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AddMediaURL records a media item entered by URL rather than uploaded.
func (s *Service) AddMediaURL(ctx context.Context, projectID, updateID string, req *AddMediaRequest) (*MediaItem, error) {
	if !req.Kind.Valid() {
		return nil, ErrInvalidMediaKind
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, ErrEmptyMediaLocation
	}
	item := MediaItem{
		ID:           NewMediaID(s.now()),
		Kind:         req.Kind,
		URL:          strings.TrimSpace(req.URL),
		ThumbnailURL: req.ThumbnailURL,
		Description:  req.Description,
	}
	if err := s.PrependMedia(ctx, projectID, updateID, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PrependMedia puts item at the front of the update's media list, keeping the
// relative order of the existing entries.
func (s *Service) PrependMedia(ctx context.Context, projectID, updateID string, item MediaItem) error {
	_, err := s.mutate(ctx, projectID, func(p *Project) error {
		idx := p.UpdateIndex(updateID)
		if idx < 0 {
			return ErrUpdateNotFound
		}
		media := make([]MediaItem, 0, len(p.Updates[idx].Media)+1)
		media = append(media, item)
		media = append(media, p.Updates[idx].Media...)
		p.Updates[idx].Media = media
		return nil
	})
	return err
}

func (s *Service) mutate(ctx context.Context, id string, fn func(p *Project) error) (*Project, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("save project %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) newUpdate(week int, date, title string) WeeklyUpdate {
	if date == "" {
		date = s.now().Format(dateLayout)
	}
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Week %d", week)
	}
	return WeeklyUpdate{
		ID:    uuid.NewString(),
		Week:  week,
		Date:  date,
		Title: title,
		Media: []MediaItem{},
	}
}

// Subscribe forwards to the store's change notifications.
func (s *Service) Subscribe(onChange func([]*Project)) func() {
	return s.store.Subscribe(onChange)
}

package project

import (
	"time"

	"gorm.io/datatypes"
)

type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaPanoramic MediaKind = "panoramic"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaPhoto, MediaVideo, MediaPanoramic:
		return true
	}
	return false
}

// MediaItem is immutable once created; it only disappears with a whole-project overwrite.
type MediaItem struct {
	ID           string    `json:"id"`
	Kind         MediaKind `json:"kind"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Description  string    `json:"description"`
}

type Stats struct {
	Completion    int    `json:"completion"`
	WorkersOnSite int    `json:"workers_on_site"`
	Weather       string `json:"weather_conditions"`
}

// WeeklyUpdate is one dated progress entry. Week numbers are admin-assigned and
// may repeat or go backwards.
type WeeklyUpdate struct {
	ID         string      `json:"id"`
	Week       int         `json:"week"`
	Date       string      `json:"date"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	CaptureURL string      `json:"capture_url,omitempty"`
	Media      []MediaItem `json:"media"`
	Stats      Stats       `json:"stats"`
}

// Project is stored as one row; the update sequence lives in a JSON column and
// is always replaced as a whole.
type Project struct {
	ID           string                            `gorm:"column:id;primaryKey" json:"id"`
	Name         string                            `gorm:"column:name" json:"name"`
	ClientName   string                            `gorm:"column:client_name" json:"client_name"`
	Location     string                            `gorm:"column:location" json:"location"`
	ThumbnailURL string                            `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	AccessCode   string                            `gorm:"column:access_code" json:"access_code,omitempty"`
	Description  string                            `gorm:"column:description" json:"description"`
	Updates      datatypes.JSONSlice[WeeklyUpdate] `gorm:"column:updates" json:"updates"`
	CreatedAt    time.Time                         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time                         `gorm:"column:updated_at" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// UpdateIndex returns the position of the update with the given id, or -1.
func (p *Project) UpdateIndex(updateID string) int {
	for i := range p.Updates {
		if p.Updates[i].ID == updateID {
			return i
		}
	}
	return -1
}

// Latest returns the most recently authored update (the first one), if any.
func (p *Project) Latest() (WeeklyUpdate, bool) {
	if len(p.Updates) == 0 {
		return WeeklyUpdate{}, false
	}
	return p.Updates[0], true
}

// Clone returns a deep copy so callers can mutate without touching shared snapshots.
func (p *Project) Clone() *Project {
	out := *p
	if p.Updates != nil {
		out.Updates = make(datatypes.JSONSlice[WeeklyUpdate], len(p.Updates))
		for i, u := range p.Updates {
			if u.Media != nil {
				u.Media = append(make([]MediaItem, 0, len(u.Media)), u.Media...)
			}
			out.Updates[i] = u
		}
	}
	return &out
}

// Public strips everything a locked viewer must not see.
func (p *Project) Public() *Project {
	return &Project{
		ID:           p.ID,
		Name:         p.Name,
		ClientName:   p.ClientName,
		Location:     p.Location,
		ThumbnailURL: p.ThumbnailURL,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ForViewer strips the access code but keeps progress data.
func (p *Project) ForViewer() *Project {
	out := p.Clone()
	out.AccessCode = ""
	return out
}

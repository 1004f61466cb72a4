package project

import "encoding/json"

type CreateProjectRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	ClientName   string `json:"client_name" validate:"required,max=200"`
	Location     string `json:"location" validate:"max=300"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
	AccessCode   string `json:"access_code" validate:"required,max=64"`
	Description  string `json:"description"`
}

// UpdateProjectRequest only touches the fields that are present.
type UpdateProjectRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	ClientName   *string `json:"client_name" validate:"omitempty,min=1,max=200"`
	Location     *string `json:"location" validate:"omitempty,max=300"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
	AccessCode   *string `json:"access_code" validate:"omitempty,min=1,max=64"`
	Description  *string `json:"description"`
}

type AddWeekRequest struct {
	Week  *int   `json:"week" validate:"omitempty,min=1"`
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Title string `json:"title" validate:"max=200"`
}

type UpdateFieldRequest struct {
	Field string          `json:"field" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

type AddMediaRequest struct {
	Kind         MediaKind `json:"kind" validate:"required"`
	URL          string    `json:"url" validate:"required,url"`
	ThumbnailURL string    `json:"thumbnail_url" validate:"omitempty,url"`
	Description  string    `json:"description" validate:"max=500"`
}

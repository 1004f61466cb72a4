package project

import "errors"

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrUpdateNotFound     = errors.New("weekly update not found")
	ErrUnknownField       = errors.New("unknown update field")
	ErrInvalidValue       = errors.New("invalid field value")
	ErrInvalidCompletion  = errors.New("completion must be between 0 and 100")
	ErrInvalidWorkers     = errors.New("workers on site must not be negative")
	ErrInvalidWeek        = errors.New("week number must be positive")
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidMediaKind   = errors.New("media kind must be photo, video or panoramic")
	ErrInvalidAccessCode  = errors.New("access code must not be empty")
	ErrEmptyMediaLocation = errors.New("media url is required")
)

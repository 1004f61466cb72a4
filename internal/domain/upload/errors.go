package upload

import "errors"

var (
	ErrFileTooLarge   = errors.New("file exceeds maximum allowed size")
	ErrPersistence    = errors.New("media could not be persisted")
	ErrNoActiveTarget = errors.New("no active project update selected")
	ErrPipelineClosed = errors.New("upload pipeline is closed")
	ErrNoFiles        = errors.New("no files provided")
)

package access

import "errors"

var (
	ErrInvalidCode     = errors.New("access code does not match")
	ErrDeviceRequired  = errors.New("device id is required")
	ErrInvalidLanguage = errors.New("language must be a two-letter code")
)

package center

import "errors"

var (
	ErrCenterNotFound    = errors.New("center not found")
	ErrInvalidCenterName = errors.New("center name cannot be empty")
)

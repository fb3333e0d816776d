package feelings

import "errors"

var (
	ErrInvalidName  = errors.New("invalid feeling name")
	ErrInvalidDelta = errors.New("invalid delta")
	ErrInvalidValue = errors.New("invalid feeling value")
)

package gate

import "errors"

// Sentinel errors returned by Gate.Authorize; compare with errors.Is.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

package inference

import "errors"

// Sentinel errors for model backends.
var (
	ErrUnknownBackend = errors.New("unknown model backend")
	ErrMissingConfig  = errors.New("missing model backend configuration")
	ErrBadStatus      = errors.New("model server returned non-2xx status")
	ErrBadResponse    = errors.New("model server returned malformed response")
)

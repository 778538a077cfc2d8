package ranking

import "errors"

// Sentinel errors for the ranking pipeline.
var (
	ErrInvalidLimit   = errors.New("limit must not be negative")
	ErrPipelineFailed = errors.New("ranking pipeline failed")
)

package rerank

import "errors"

// Sentinel errors for the rerank stage.
var (
	ErrModelUnavailable = errors.New("cross-encoder unavailable")
	ErrDegenerateOutput = errors.New("cross-encoder returned degenerate output")
)

package embedding

import "errors"

// Sentinel errors for the embedding stage.
var (
	ErrModelUnavailable = errors.New("embedding model unavailable")
	ErrDegenerateOutput = errors.New("embedding model returned degenerate output")
)

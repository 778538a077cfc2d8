package taxonomy

import "errors"

// Sentinel errors for taxonomy loading.
var (
	ErrReadFile      = errors.New("taxonomy read failed")
	ErrParseFile     = errors.New("taxonomy parse failed")
	ErrEmptyTaxonomy = errors.New("taxonomy has no skill terms")
)

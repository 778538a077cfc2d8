package repository

import "errors"

// Sentinel kinds for task store errors.
var (
	ErrNotFound = errors.New("task not found")
	ErrExists   = errors.New("task already exists")
	ErrInvalid  = errors.New("invalid task")
)

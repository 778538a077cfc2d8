package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("ranking queue is full")
	ErrTooManyJobs  = errors.New("too many jobs in request")
	ErrLimitTooHigh = errors.New("limit exceeds maximum")
)

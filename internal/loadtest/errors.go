package loadtest

import "errors"

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrVerification is returned when completed rankings break an ordering or bound invariant.
	ErrVerification = errors.New("ranking verification failed")
	// ErrNothingSubmitted is returned when no task was accepted.
	ErrNothingSubmitted = errors.New("no ranking task accepted")
)

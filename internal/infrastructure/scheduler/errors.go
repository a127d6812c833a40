package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when a job has no usable interval
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned by Start on a running scheduler
	ErrAlreadyRunning = errors.New("scheduler is already running")
)

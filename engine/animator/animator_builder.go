package animator

import (
	"go.uber.org/zap"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithWorkers is an option builder that sets the maximum number of pool workers applying
// playbacks in parallel. Values below 1 are ignored.
//
// Parameters:
//   - workers: the maximum number of workers
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the workers option to an animator
func WithWorkers(workers int) AnimatorBuilderOption {
	return func(a *animator) {
		if workers > 0 {
			a.workers = workers
		}
	}
}

// WithQueueSize is an option builder that sets the task queue length of the worker pool.
// Values below 1 are ignored.
//
// Parameters:
//   - size: the queue length
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the queue size option to an animator
func WithQueueSize(size int) AnimatorBuilderOption {
	return func(a *animator) {
		if size > 0 {
			a.queueSize = size
		}
	}
}

// WithLogger is an option builder that sets the logger used for playback events.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the logger option to an animator
func WithLogger(logger *zap.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		a.logger = logger
	}
}

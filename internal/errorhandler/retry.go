// Package errorhandler is neo's top-level failure coordinator. It
// normalizes arbitrary failures into the taxonomy, attempts registered
// recovery strategies, and otherwise terminates the process with a
// formatted report.
package errorhandler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"neo/pkg/neoerrors"
)

// RecoveryStrategy decides whether an error category is worth waiting out
// and performs the wait. Recover never re-runs the failing operation; the
// caller retries after a successful recovery.
type RecoveryStrategy interface {
	CanRecover(err *neoerrors.AppError) bool
	Recover(ctx context.Context, err *neoerrors.AppError) error
}

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = time.Second
)

// RetryStrategy waits out possibly transient conditions with a bounded
// number of linearly backed-off delays.
type RetryStrategy struct {
	attempts  int
	baseDelay time.Duration
	backoff   bool
	logger    *log.Logger
}

// RetryOption configures a RetryStrategy.
type RetryOption func(*RetryStrategy)

// WithAttempts sets the number of retry waits.
func WithAttempts(n int) RetryOption {
	return func(s *RetryStrategy) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithBaseDelay sets the base delay between attempts.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(s *RetryStrategy) {
		if d > 0 {
			s.baseDelay = d
		}
	}
}

// WithoutBackoff disables linear backoff, using a fixed delay per attempt.
func WithoutBackoff() RetryOption {
	return func(s *RetryStrategy) {
		s.backoff = false
	}
}

// NewRetryStrategy creates a retry strategy with 3 attempts of linear
// backoff by default.
func NewRetryStrategy(logger *log.Logger, opts ...RetryOption) *RetryStrategy {
	s := &RetryStrategy{
		attempts:  defaultRetryAttempts,
		baseDelay: defaultRetryDelay,
		backoff:   true,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CanRecover reports true only for the transient-by-nature categories:
// network and filesystem failures.
func (s *RetryStrategy) CanRecover(err *neoerrors.AppError) bool {
	if err == nil {
		return false
	}
	return err.Category == neoerrors.CategoryNetwork || err.Category == neoerrors.CategoryFileSystem
}

// Recover waits out the condition: attempts delays of attempt × baseDelay
// (or a fixed baseDelay with backoff disabled), logging each one. It leaves
// re-running the failed operation to the caller.
func (s *RetryStrategy) Recover(ctx context.Context, err *neoerrors.AppError) error {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		delay := s.baseDelay
		if s.backoff {
			delay = time.Duration(attempt) * s.baseDelay
		}

		s.logger.Info("Retry attempt", "attempt", attempt, "of", s.attempts, "delay", delay, "code", err.Code)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy is the retry policy value object consumed by Execute. One policy
// instance wraps one whole unit of work; steps inside the unit never retry
// on their own.
type Policy struct {
	MaxAttempts         int           // total tries, including the first
	InitialInterval     time.Duration // first backoff delay
	MaxInterval         time.Duration // backoff delay ceiling
	Multiplier          float64       // exponential growth factor
	RandomizationFactor float64       // jitter, fraction of the interval
	MaxElapsedTime      time.Duration // soft budget; zero means unbounded
}

// DefaultPolicy is the pipeline-wide default: 5 attempts, exponential
// backoff with jitter, 4 minute soft budget.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:         5,
		InitialInterval:     2 * time.Second,
		MaxInterval:         30 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
		MaxElapsedTime:      4 * time.Minute,
	}
}

// PermanentError marks a failure that must not be retried (configuration
// errors). Execute stops immediately and returns it.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so Execute gives up without further attempts.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError anywhere in its
// chain.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Notify is called before each wait with the failure and the upcoming delay.
type Notify func(err error, next time.Duration)

// Execute runs op under the policy. The whole operation is re-executed on
// every attempt; op must be idempotent. Context cancellation aborts between
// attempts and is surfaced as the returned error.
func (p Policy) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	return p.ExecuteNotify(ctx, op, nil)
}

// ExecuteNotify is Execute with a per-retry callback, used by the workers to
// log attempt failures.
func (p Policy) ExecuteNotify(ctx context.Context, op func(ctx context.Context) error, notify Notify) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.RandomizationFactor

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
	}
	if p.MaxElapsedTime > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(p.MaxElapsedTime))
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(func(err error, next time.Duration) {
			notify(err, next)
		}))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		opErr := op(ctx)
		if opErr == nil {
			return struct{}{}, nil
		}
		if IsPermanent(opErr) {
			return struct{}{}, backoff.Permanent(opErr)
		}
		return struct{}{}, opErr
	}, opts...)

	return err
}

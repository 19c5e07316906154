package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// Policy configures retry behavior.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the starting backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied to backoff after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64

	// Retryable optionally overrides IsRetryable.
	Retryable func(error) bool

	// Logger receives a warning before each retry. Nil disables logging.
	Logger *slog.Logger
}

// DefaultPolicy is the standard retry configuration.
var DefaultPolicy = Policy{
	MaxAttempts:    3,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     30 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// NoRetry disables retries.
var NoRetry = Policy{
	MaxAttempts: 1,
}

// Result describes a finished retry loop.
type Result[T any] struct {
	// Value is the result if successful.
	Value T

	// Err is the final error if all attempts failed.
	Err error

	// Attempts is the number of attempts made.
	Attempts int

	// Duration is the total time spent, including backoff.
	Duration time.Duration
}

// Do runs fn until it succeeds, returns a non-retryable error, the policy
// runs out of attempts, or ctx is done. Failures are returned as
// *CategorizedError.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	return DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}).Err
}

// DoValue is Do for functions that produce a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) Result[T] {
	start := time.Now()
	attempts := max(p.MaxAttempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	fail := func(err error, cat Category, made int, op string) Result[T] {
		return Result[T]{
			Err:      &CategorizedError{Err: err, Category: cat, Attempts: made, Op: op},
			Attempts: made,
			Duration: time.Since(start),
		}
	}

	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(ctxErr, CategoryPermanent, attempt-1, "context done")
		}

		value, err := fn(ctx)
		if err == nil {
			return Result[T]{Value: value, Attempts: attempt, Duration: time.Since(start)}
		}
		if !retryable(err) {
			return fail(err, CategoryPermanent, attempt, "")
		}
		if attempt == attempts {
			return fail(err, CategoryTransient, attempt, "max attempts exceeded")
		}

		wait := p.delay(attempt)
		if p.Logger != nil {
			p.Logger.Warn("retrying",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()))
		}
		if !sleep(ctx, wait) {
			return fail(ctx.Err(), CategoryPermanent, attempt, "context done during backoff")
		}
	}
}

// delay is the backoff after the given attempt: InitialBackoff grown by
// BackoffFactor per earlier attempt, capped at MaxBackoff, then jittered by
// up to ±Jitter of itself. Without MaxBackoff it saturates at the largest
// Duration.
func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.InitialBackoff)
	if p.BackoffFactor > 0 {
		d *= math.Pow(p.BackoffFactor, float64(attempt-1))
	}
	if p.MaxBackoff > 0 {
		d = math.Min(d, float64(p.MaxBackoff))
	}
	d = math.Min(d, maxDelay)
	if p.Jitter > 0 {
		d += d * p.Jitter * (rand.Float64()*2 - 1)
	}
	if d >= maxDelay {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(max(d, 0))
}

const maxDelay = float64(math.MaxInt64)

// sleep waits for d, returning false if ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Option configures a Policy.
type Option func(*Policy)

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		p.MaxAttempts = n
	}
}

// WithBackoff sets the initial and maximum backoff durations.
func WithBackoff(initial, maxBackoff time.Duration) Option {
	return func(p *Policy) {
		p.InitialBackoff = initial
		p.MaxBackoff = maxBackoff
	}
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) Option {
	return func(p *Policy) {
		p.BackoffFactor = f
	}
}

// WithJitter sets the jitter factor.
func WithJitter(j float64) Option {
	return func(p *Policy) {
		p.Jitter = j
	}
}

// WithRetryable sets a custom retryability check.
func WithRetryable(fn func(error) bool) Option {
	return func(p *Policy) {
		p.Retryable = fn
	}
}

// WithLogger logs each retry.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) {
		p.Logger = logger
	}
}

// NewPolicy creates a policy from DefaultPolicy and the given options.
func NewPolicy(opts ...Option) Policy {
	p := DefaultPolicy
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

package query

import (
	"context"
	"time"
)

// Default tuning mirrors the site's read patterns: content changes rarely,
// navigation and settings even less.
const (
	DefaultStaleTime      = 5 * time.Minute
	DefaultGCTime         = 10 * time.Minute
	DefaultRetry          = 3
	DefaultRetryBaseDelay = time.Second
	DefaultRetryMaxDelay  = 30 * time.Second
)

// Fetcher loads the data for one key. It must honour ctx cancellation.
type Fetcher func(ctx context.Context) (any, error)

// RetryPolicy decides whether failure number failureCount (zero based) is
// worth another attempt.
type RetryPolicy func(failureCount int, err error) bool

// Options tunes one query. A negative StaleTime never goes stale; a negative
// GCTime is never collected.
type Options struct {
	StaleTime      time.Duration
	GCTime         time.Duration
	Retry          int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	ShouldRetry    RetryPolicy
}

// DefaultOptions returns the package defaults.
func DefaultOptions() Options {
	return Options{
		StaleTime:      DefaultStaleTime,
		GCTime:         DefaultGCTime,
		Retry:          DefaultRetry,
		RetryBaseDelay: DefaultRetryBaseDelay,
		RetryMaxDelay:  DefaultRetryMaxDelay,
	}
}

func (o Options) normalized() Options {
	if o.Retry < 0 {
		o.Retry = 0
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if o.RetryMaxDelay <= 0 {
		o.RetryMaxDelay = DefaultRetryMaxDelay
	}
	if o.RetryMaxDelay < o.RetryBaseDelay {
		o.RetryMaxDelay = o.RetryBaseDelay
	}
	if o.ShouldRetry == nil {
		o.ShouldRetry = func(_ int, err error) bool { return Retryable(err) }
	}
	return o
}

// Query couples a key with its fetcher. Options nil means client defaults.
type Query struct {
	Key     Key
	Fetch   Fetcher
	Options *Options
}

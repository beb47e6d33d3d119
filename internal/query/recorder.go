package query

import "time"

// Outcomes reported to Recorder.FetchFinished.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Recorder receives cache instrumentation. Implementations must be safe for
// concurrent use and must not call back into the Client.
type Recorder interface {
	FetchStarted(key Key)
	FetchFinished(key Key, outcome string, elapsed time.Duration)
	Retry(key Key, attempt int, delay time.Duration)
	Deduplicated(key Key)
	CacheHit(key Key)
}

type nopRecorder struct{}

func (nopRecorder) FetchStarted(Key)                         {}
func (nopRecorder) FetchFinished(Key, string, time.Duration) {}
func (nopRecorder) Retry(Key, int, time.Duration)            {}
func (nopRecorder) Deduplicated(Key)                         {}
func (nopRecorder) CacheHit(Key)                             {}

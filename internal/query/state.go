package query

import "time"

// Status is the coarse lifecycle of a State.
type Status uint8

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

var statusNames = [...]string{"idle", "loading", "success", "error"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// MarshalText renders the status name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is an immutable snapshot of one cache slot.
type State struct {
	Key           Key
	Data          any
	Status        Status
	Error         error
	LastFetchedAt time.Time
	ErrorAt       time.Time
	IsFetching    bool
	FailureCount  int
	Invalidated   bool
	Version       uint64
}

// HasData reports whether a fetch or hydration has ever succeeded.
func (s State) HasData() bool { return !s.LastFetchedAt.IsZero() }

// IsLoading reports a first fetch in progress: no data yet.
func (s State) IsLoading() bool { return s.Status == StatusLoading }

// IsSuccess reports usable data, possibly with a background error notice.
func (s State) IsSuccess() bool { return s.Status == StatusSuccess }

// IsError reports a terminal failure with nothing cached.
func (s State) IsError() bool { return s.Status == StatusError }

// Notice returns the error of a failed background refresh over cached data.
func (s State) Notice() error {
	if s.Status == StatusSuccess {
		return s.Error
	}
	return nil
}

// IsStale reports whether now is past the freshness window. A negative
// staleTime never expires; zero is always stale.
func (s State) IsStale(now time.Time, staleTime time.Duration) bool {
	if !s.HasData() || s.Invalidated {
		return true
	}
	if staleTime < 0 {
		return false
	}
	return now.Sub(s.LastFetchedAt) >= staleTime
}

// Data extracts typed data from a State.
func Data[T any](s State) (T, bool) {
	v, ok := s.Data.(T)
	return v, ok
}

package query

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Combined aggregates independent subscriptions. The members are fetched
// concurrently and settle in any order.
type Combined struct {
	subs []*Subscription
}

// Combine groups subs.
func Combine(subs ...*Subscription) *Combined {
	kept := make([]*Subscription, 0, len(subs))
	for _, sub := range subs {
		if sub != nil {
			kept = append(kept, sub)
		}
	}
	return &Combined{subs: kept}
}

// States returns member snapshots in the order given to Combine.
func (c *Combined) States() []State {
	out := make([]State, len(c.subs))
	for i, sub := range c.subs {
		out[i] = sub.State()
	}
	return out
}

// IsLoading reports whether any member is still on its first fetch.
func (c *Combined) IsLoading() bool { return Summarize(c.States()...).IsLoading }

// IsFetching reports whether any member has a fetch running.
func (c *Combined) IsFetching() bool { return Summarize(c.States()...).IsFetching }

// IsSuccess reports whether every member holds data.
func (c *Combined) IsSuccess() bool { return Summarize(c.States()...).IsSuccess }

// HasErrors reports whether any member carries an error.
func (c *Combined) HasErrors() bool { return len(c.Errors()) > 0 }

// Errors lists member errors in member order.
func (c *Combined) Errors() []error { return Summarize(c.States()...).Errors }

// Summary folds several states into the flags a page needs.
type Summary struct {
	IsLoading  bool
	IsFetching bool
	IsSuccess  bool
	Errors     []error
}

// HasErrors reports whether any state carried an error.
func (s Summary) HasErrors() bool { return len(s.Errors) > 0 }

// Summarize aggregates states. IsSuccess needs at least one state and every
// state successful; Errors keeps state order.
func Summarize(states ...State) Summary {
	sum := Summary{IsSuccess: len(states) > 0}
	for _, st := range states {
		if st.IsLoading() {
			sum.IsLoading = true
		}
		if st.IsFetching {
			sum.IsFetching = true
		}
		if !st.IsSuccess() {
			sum.IsSuccess = false
		}
		if st.Error != nil {
			sum.Errors = append(sum.Errors, st.Error)
		}
	}
	return sum
}

// RefetchAll refetches every member at once.
func (c *Combined) RefetchAll() {
	for _, sub := range c.subs {
		sub.Refetch()
	}
}

// Wait blocks until no member has a fetch running or ctx ends.
func (c *Combined) Wait(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	for _, sub := range c.subs {
		done := sub.Done()
		group.Go(func() error {
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	return group.Wait()
}

// Unsubscribe releases every member.
func (c *Combined) Unsubscribe() {
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
}

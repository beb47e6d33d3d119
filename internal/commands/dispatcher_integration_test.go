package commands

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type dispatchedRefetch struct {
	Resource string
}

func (dispatchedRefetch) Type() string { return "site.test.dispatch_refetch" }

func (m dispatchedRefetch) Validate() error {
	if m.Resource == "" {
		return errors.New("resource is required")
	}
	return nil
}

func TestDispatcherRetriesTransientFetchFailure(t *testing.T) {
	var attempts atomic.Int32
	handler := NewHandler(func(ctx context.Context, msg dispatchedRefetch) error {
		if attempts.Add(1) == 1 {
			return errors.New("cms unreachable")
		}
		return nil
	}, WithTimeout[dispatchedRefetch](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), dispatchedRefetch{Resource: "services"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestDispatcherNeverExecutesInvalidMessages(t *testing.T) {
	var attempts atomic.Int32
	handler := NewHandler(func(ctx context.Context, msg dispatchedRefetch) error {
		attempts.Add(1)
		return nil
	})

	sub := dispatcher.SubscribeCommand(handler)
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), dispatchedRefetch{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if got := attempts.Load(); got != 0 {
		t.Fatalf("expected no executions, got %d", got)
	}
}

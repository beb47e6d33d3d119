package query

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

var (
	// ErrCanceled is returned to waiters of a fetch abandoned by its observers.
	ErrCanceled = errors.New("query: fetch canceled")
	// ErrClosed is returned once the client has been closed.
	ErrClosed = errors.New("query: client closed")
	// ErrNoFetcher is returned when a key has never been given a fetcher.
	ErrNoFetcher = errors.New("query: no fetcher registered for key")
)

// Listener observes committed transitions of one key. Listeners run outside
// the client lock and may call back into the client.
type Listener func(State)

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithDefaults replaces the options used by queries without their own.
func WithDefaults(opts Options) ClientOption {
	return func(c *Client) {
		c.defaults = opts
	}
}

// WithLogger sets the logger used for fetch lifecycle entries.
func WithLogger(logger interfaces.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for staleness.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSleeper overrides how retry delays are waited out.
func WithSleeper(sleep func(context.Context, time.Duration) error) ClientOption {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithRecorder attaches instrumentation.
func WithRecorder(recorder Recorder) ClientOption {
	return func(c *Client) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// WithBaseContext parents every fetch context. Cancelling it aborts all
// fetches.
func WithBaseContext(ctx context.Context) ClientOption {
	return func(c *Client) {
		if ctx != nil {
			c.parent = ctx
		}
	}
}

// Client owns the cache. All state transitions are serialised by one mutex.
type Client struct {
	mu        sync.Mutex
	entries   map[string]*entry
	defaults  Options
	logger    interfaces.Logger
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error
	recorder  Recorder
	events    *eventBroadcaster
	parent    context.Context
	baseCtx   context.Context
	stop      context.CancelFunc
	flights   sync.WaitGroup
	lastStamp time.Time
	nextSubID uint64
	closed    bool

	// pending holds committed changes in Version order until delivered.
	pending    []change
	delivering sync.Mutex
}

type entry struct {
	key     Key
	hash    string
	state   State
	fetch   Fetcher
	opts    Options
	subs    map[uint64]*Subscription
	waiters int
	gen     uint64
	flight  *flight
	gcTimer *time.Timer
}

func (e *entry) observers() int { return len(e.subs) + e.waiters }

type flight struct {
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	after    <-chan struct{}
	prev     State
	started  time.Time
	canceled bool
	// marked is set when starting the fetch moved the key into loading.
	marked bool
	data     any
	err      error
}

func (f *flight) active() bool { return f != nil && !f.canceled }

type change struct {
	event     Event
	listeners []Listener
}

// NewClient builds an empty cache.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		entries:  make(map[string]*entry),
		defaults: DefaultOptions(),
		logger:   logging.NoOp(),
		now:      time.Now,
		sleep:    sleepContext,
		recorder: nopRecorder{},
		events:   newEventBroadcaster(),
		parent:   context.Background(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.baseCtx, c.stop = context.WithCancel(c.parent)
	return c
}

// Defaults returns a copy of the client-wide options.
func (c *Client) Defaults() Options {
	return c.defaults
}

// Subscribe observes q.Key. The first observer of an empty or stale key
// triggers a fetch; later observers attach to the fetch already running.
func (c *Client) Subscribe(q Query, listener Listener) *Subscription {
	c.mu.Lock()
	e := c.entryLocked(q)
	c.nextSubID++
	sub := &Subscription{client: c, entry: e, id: c.nextSubID, listener: listener, active: true}
	e.subs[sub.id] = sub

	switch {
	case e.flight.active():
		c.recorder.Deduplicated(e.key)
	case e.state.IsStale(c.now(), e.opts.StaleTime):
		c.startLocked(e)
	default:
		c.recorder.CacheHit(e.key)
	}
	c.mu.Unlock()

	c.flush()
	return sub
}

// Fetch returns fresh cached data or waits for a fetch. The caller counts as
// an observer until it returns, so abandoning ctx may cancel the fetch.
func (c *Client) Fetch(ctx context.Context, q Query) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	e := c.entryLocked(q)
	if !e.flight.active() && !e.state.IsStale(c.now(), e.opts.StaleTime) {
		data := e.state.Data
		c.recorder.CacheHit(e.key)
		if e.observers() == 0 {
			c.scheduleGCLocked(e)
		}
		c.mu.Unlock()
		return data, nil
	}
	f := c.startLocked(e)
	if f == nil {
		err := c.unavailableLocked(e)
		if e.observers() == 0 {
			c.scheduleGCLocked(e)
		}
		c.mu.Unlock()
		return nil, err
	}
	e.waiters++
	c.mu.Unlock()

	c.flush()
	return c.await(ctx, e, f)
}

// Ensure returns cached data when any exists, fresh or not, and fetches
// otherwise.
func (c *Client) Ensure(ctx context.Context, q Query) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[q.Key.Hash()]; ok && e.state.HasData() {
		data := e.state.Data
		c.recorder.CacheHit(e.key)
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()
	return c.Fetch(ctx, q)
}

// Prefetch warms q.Key and discards the data.
func (c *Client) Prefetch(ctx context.Context, q Query) error {
	_, err := c.Fetch(ctx, q)
	return err
}

// Refetch forces a fetch of an observed key. The returned channel closes when
// the fetch settles; it is already closed when nothing is observing key.
func (c *Client) Refetch(key Key) <-chan struct{} {
	c.mu.Lock()
	e, ok := c.entries[key.Hash()]
	if !ok || e.observers() == 0 {
		c.mu.Unlock()
		return closedChan()
	}
	f := c.startLocked(e)
	c.mu.Unlock()

	c.flush()
	if f == nil {
		return closedChan()
	}
	return f.done
}

// Invalidate marks every key under prefix stale and refetches the observed
// ones. It returns how many keys matched.
func (c *Client) Invalidate(prefix Key) int {
	c.mu.Lock()
	matched := 0
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		matched++
		e.state.Invalidated = true
		c.commitLocked(e, EventInvalidated)
		if len(e.subs) > 0 {
			c.startLocked(e)
		}
	}
	c.mu.Unlock()

	if matched > 0 {
		c.logger.Debug("query.invalidated", "prefix", prefix.String(), "matched", matched)
	}
	c.flush()
	return matched
}

// SetData seeds key with data fetched at at. A zero at means now. Data older
// than what the key already holds is ignored and SetData reports false.
func (c *Client) SetData(key Key, data any, at time.Time) bool {
	c.mu.Lock()
	e := c.entryLocked(Query{Key: key})
	if e.state.HasData() && !at.IsZero() && !at.After(e.state.LastFetchedAt) {
		if e.observers() == 0 {
			c.scheduleGCLocked(e)
		}
		c.mu.Unlock()
		return false
	}
	if at.IsZero() {
		at = c.stampLocked()
	} else if at.After(c.lastStamp) {
		c.lastStamp = at
	}
	e.state.Data = data
	e.state.Status = StatusSuccess
	e.state.Error = nil
	e.state.ErrorAt = time.Time{}
	e.state.LastFetchedAt = at
	e.state.FailureCount = 0
	e.state.Invalidated = false
	c.commitLocked(e, EventHydrated)
	if e.observers() == 0 {
		c.scheduleGCLocked(e)
	}
	c.mu.Unlock()

	c.flush()
	return true
}

// State returns the snapshot held for key.
func (c *Client) State(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.Hash()]
	if !ok {
		return State{}, false
	}
	return e.snapshot(), true
}

// Keys lists every cached key in string order.
func (c *Client) Keys() []Key {
	c.mu.Lock()
	keys := make([]Key, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.key)
	}
	c.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Remove drops an unobserved key. Observed keys are kept and Remove reports
// false.
func (c *Client) Remove(key Key) bool {
	c.mu.Lock()
	e, ok := c.entries[key.Hash()]
	if !ok || e.observers() > 0 {
		c.mu.Unlock()
		return false
	}
	c.dropLocked(e)
	c.mu.Unlock()

	c.flush()
	return true
}

// Clear drops every unobserved key and reports how many went.
func (c *Client) Clear() int {
	c.mu.Lock()
	dropped := 0
	for _, e := range c.entries {
		if e.observers() > 0 {
			continue
		}
		c.dropLocked(e)
		dropped++
	}
	c.mu.Unlock()

	c.flush()
	return dropped
}

// Watch streams committed transitions until ctx ends. Slow readers drop
// events rather than stall the cache.
func (c *Client) Watch(ctx context.Context) <-chan Event {
	return c.events.Subscribe(ctx, 32)
}

// Close aborts every fetch, stops collection timers and waits for fetch
// goroutines to exit. Aborted fetches settle as canceled, never as errors.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.flights.Wait()
		return
	}
	c.closed = true
	for _, e := range c.entries {
		if e.gcTimer != nil {
			e.gcTimer.Stop()
			e.gcTimer = nil
		}
		if e.flight.active() {
			c.cancelFlightLocked(e)
		}
	}
	c.mu.Unlock()

	c.stop()
	c.flush()
	c.flights.Wait()
}

func (c *Client) entryLocked(q Query) *entry {
	hash := q.Key.Hash()
	e, ok := c.entries[hash]
	if !ok {
		key := append(Key(nil), q.Key...)
		e = &entry{
			key:   key,
			hash:  hash,
			state: State{Key: key, Status: StatusIdle},
			opts:  c.defaults.normalized(),
			subs:  make(map[uint64]*Subscription),
		}
		c.entries[hash] = e
	}
	if q.Fetch != nil {
		e.fetch = q.Fetch
	}
	if q.Options != nil {
		e.opts = q.Options.normalized()
	}
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	return e
}

func (c *Client) unavailableLocked(e *entry) error {
	if c.closed {
		return ErrClosed
	}
	if e.fetch == nil {
		return ErrNoFetcher
	}
	return nil
}

// startLocked starts a fetch for e or joins the one already running. It
// returns nil when no fetch can run.
func (c *Client) startLocked(e *entry) *flight {
	if e.flight.active() {
		c.recorder.Deduplicated(e.key)
		return e.flight
	}
	if c.closed || e.fetch == nil {
		return nil
	}

	var after <-chan struct{}
	if e.flight != nil {
		after = e.flight.done
	}
	e.gen++
	ctx, cancel := context.WithCancel(c.baseCtx)
	f := &flight{
		gen:     e.gen,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		after:   after,
		prev:    e.state,
		started: c.now(),
	}
	e.flight = f
	e.state.IsFetching = true
	if !e.state.HasData() {
		e.state.Status = StatusLoading
		e.state.Error = nil
		f.marked = true
	}
	c.commitLocked(e, EventFetching)

	c.flights.Add(1)
	c.recorder.FetchStarted(e.key)
	c.logger.Debug("query.fetch.started", "query_key", e.key.String(), "generation", f.gen)
	go c.run(e, f, e.fetch, e.opts)
	return f
}

func (c *Client) run(e *entry, f *flight, fetch Fetcher, opts Options) {
	defer c.flights.Done()
	defer f.cancel()

	if f.after != nil {
		select {
		case <-f.after:
		case <-f.ctx.Done():
		}
	}

	var (
		data     any
		err      error
		failures int
	)
	if err = f.ctx.Err(); err == nil {
		data, failures, err = c.execute(f.ctx, e.key, fetch, opts)
	}

	c.complete(e, f, data, err, failures)
	c.flush()
	close(f.done)
}

// execute runs fetch until it succeeds, the retry policy gives up or ctx
// ends. It returns the number of failed attempts.
func (c *Client) execute(ctx context.Context, key Key, fetch Fetcher, opts Options) (any, int, error) {
	schedule := newBackOff(opts)
	for failures := 0; ; {
		data, err := fetch(ctx)
		if err == nil {
			return data, failures, nil
		}
		failures++
		if ctx.Err() != nil || !opts.ShouldRetry(failures-1, err) {
			return nil, failures, err
		}
		delay := schedule.NextBackOff()
		if delay == backoff.Stop {
			return nil, failures, err
		}
		c.logger.Warn("query.fetch.retry",
			"query_key", key.String(),
			"attempt", failures,
			"delay", delay,
			"error", err,
		)
		c.recorder.Retry(key, failures, delay)
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return nil, failures, err
		}
	}
}

func (c *Client) complete(e *entry, f *flight, data any, err error, failures int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.now().Sub(f.started)
	if e.flight != f || f.canceled || e.gen != f.gen {
		if e.flight == f {
			e.flight = nil
		}
		f.data, f.err = nil, ErrCanceled
		c.recorder.FetchFinished(e.key, OutcomeCanceled, elapsed)
		c.logger.Debug("query.fetch.discarded", "query_key", e.key.String(), "generation", f.gen)
		return
	}

	f.data, f.err = data, err
	e.flight = nil
	e.state.IsFetching = false
	stamp := c.stampLocked()

	var typ EventType
	if err == nil {
		e.state.Data = data
		e.state.Status = StatusSuccess
		e.state.Error = nil
		e.state.ErrorAt = time.Time{}
		e.state.LastFetchedAt = stamp
		e.state.FailureCount = 0
		e.state.Invalidated = false
		typ = EventSuccess
		c.recorder.FetchFinished(e.key, OutcomeSuccess, elapsed)
	} else {
		e.state.Error = err
		e.state.ErrorAt = stamp
		e.state.FailureCount = failures
		if e.state.HasData() {
			e.state.Status = StatusSuccess
		} else {
			e.state.Status = StatusError
		}
		typ = EventError
		c.recorder.FetchFinished(e.key, OutcomeError, elapsed)
		c.logger.Warn("query.fetch.failed",
			"query_key", e.key.String(),
			"failures", failures,
			"stale_data", e.state.HasData(),
			"error", err,
		)
	}

	c.commitLocked(e, typ)
	if e.observers() == 0 {
		c.scheduleGCLocked(e)
	}
}

func (c *Client) await(ctx context.Context, e *entry, f *flight) (any, error) {
	var ctxErr error
	select {
	case <-f.done:
	case <-ctx.Done():
		ctxErr = ctx.Err()
	}

	c.mu.Lock()
	e.waiters--
	c.releaseLocked(e)
	c.mu.Unlock()
	c.flush()

	if ctxErr != nil {
		return nil, ctxErr
	}
	return f.data, f.err
}

// releaseLocked runs after an observer leaves. With nobody left it cancels
// the running fetch and arms collection.
func (c *Client) releaseLocked(e *entry) {
	if e.observers() > 0 {
		return
	}
	if e.flight.active() {
		c.cancelFlightLocked(e)
	}
	if c.entries[e.hash] == e {
		c.scheduleGCLocked(e)
	}
}

// cancelFlightLocked aborts the running fetch and undoes only what starting
// it changed. Data, timestamps and invalidation marks committed while it ran
// are kept.
func (c *Client) cancelFlightLocked(e *entry) {
	f := e.flight
	f.canceled = true
	f.cancel()
	e.gen++

	e.state.IsFetching = false
	if f.marked && e.state.Status == StatusLoading {
		e.state.Status = f.prev.Status
		e.state.Error = f.prev.Error
	}
	c.commitLocked(e, EventCanceled)
	c.logger.Debug("query.fetch.canceled", "query_key", e.key.String(), "generation", f.gen)
}

func (c *Client) scheduleGCLocked(e *entry) {
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	if c.closed || e.opts.GCTime < 0 {
		return
	}
	e.gcTimer = time.AfterFunc(e.opts.GCTime, func() { c.collect(e) })
}

func (c *Client) collect(e *entry) {
	c.mu.Lock()
	if c.closed || c.entries[e.hash] != e || e.observers() > 0 || e.flight.active() {
		c.mu.Unlock()
		return
	}
	c.dropLocked(e)
	c.mu.Unlock()

	c.logger.Debug("query.gc.collected", "query_key", e.key.String())
	c.flush()
}

func (c *Client) dropLocked(e *entry) {
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	if e.flight.active() {
		e.flight.canceled = true
		e.flight.cancel()
		e.gen++
	}
	delete(c.entries, e.hash)
	c.pending = append(c.pending, change{event: Event{Type: EventRemoved, Key: e.key, State: e.snapshot()}})
}

// stampLocked returns a timestamp strictly after every one handed out before.
func (c *Client) stampLocked() time.Time {
	now := c.now()
	if !now.After(c.lastStamp) {
		now = c.lastStamp.Add(time.Nanosecond)
	}
	c.lastStamp = now
	return now
}

// commitLocked bumps the version and queues the transition for delivery.
func (c *Client) commitLocked(e *entry, typ EventType) {
	e.state.Version++
	st := e.snapshot()
	listeners := make([]Listener, 0, len(e.subs))
	for _, sub := range e.subs {
		if sub.listener != nil {
			listeners = append(listeners, sub.listener)
		}
	}
	c.pending = append(c.pending, change{event: Event{Type: typ, Key: e.key, State: st}, listeners: listeners})
}

// flush delivers queued changes outside the cache lock, in commit order.
// Only one goroutine delivers at a time; a caller that finds delivery
// underway leaves its changes to the active deliverer, which keeps draining
// until the queue is empty. Listeners may call back into the client.
func (c *Client) flush() {
	for {
		if !c.delivering.TryLock() {
			return
		}
		for {
			c.mu.Lock()
			batch := c.pending
			c.pending = nil
			c.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, ch := range batch {
				for _, listener := range ch.listeners {
					listener(ch.event.State)
				}
				c.events.Broadcast(ch.event)
			}
		}
		c.delivering.Unlock()

		c.mu.Lock()
		empty := len(c.pending) == 0
		c.mu.Unlock()
		if empty {
			return
		}
	}
}

func (e *entry) snapshot() State {
	st := e.state
	st.Key = e.key
	return st
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

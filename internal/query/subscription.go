package query

// Subscription is one observer of a key. It keeps the key alive until
// Unsubscribe is called.
type Subscription struct {
	client   *Client
	entry    *entry
	id       uint64
	listener Listener
	active   bool
}

// Key returns the observed key.
func (s *Subscription) Key() Key {
	return s.entry.key
}

// State returns the current snapshot.
func (s *Subscription) State() State {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	return s.entry.snapshot()
}

// Refetch starts a fetch, or joins the running one, and returns a channel
// closed when it settles.
func (s *Subscription) Refetch() <-chan struct{} {
	c := s.client
	c.mu.Lock()
	if !s.active {
		c.mu.Unlock()
		return closedChan()
	}
	f := c.startLocked(s.entry)
	c.mu.Unlock()

	c.flush()
	if f == nil {
		return closedChan()
	}
	return f.done
}

// Done returns a channel closed once no fetch is running for the key.
func (s *Subscription) Done() <-chan struct{} {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	if s.entry.flight == nil {
		return closedChan()
	}
	return s.entry.flight.done
}

// Unsubscribe detaches the observer. The last observer leaving cancels a
// running fetch and clears its loading state. Calling it twice is harmless.
func (s *Subscription) Unsubscribe() {
	c := s.client
	c.mu.Lock()
	if !s.active {
		c.mu.Unlock()
		return
	}
	s.active = false
	delete(s.entry.subs, s.id)
	c.releaseLocked(s.entry)
	c.mu.Unlock()

	c.flush()
}

package site

import (
	"context"
	"errors"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/snapshot"
)

// Hydrate seeds the cache with persisted listings. Snapshots keep their
// original fetch time, so old ones are refetched on first use. It returns
// how many keys were seeded.
func (s *Service) Hydrate(ctx context.Context) (int, error) {
	if s.snapshots == nil {
		return 0, nil
	}
	snaps, err := s.snapshots.List(ctx)
	if err != nil {
		return 0, err
	}
	seeded := 0
	for _, snap := range snaps {
		res, ok := lookupIn(s.resources, snap.Resource)
		if !ok || snap.Key != res.Key().String() {
			s.logger.Debug("site.snapshot.skipped", "key", snap.Key, "resource", snap.Resource)
			continue
		}
		data, err := res.restore([]byte(snap.Payload))
		if err != nil {
			s.logger.Warn("site.snapshot.corrupt", "key", snap.Key, "error", err)
			continue
		}
		if s.client.SetData(res.Key(), data, snap.FetchedAt) {
			seeded++
		}
	}
	s.logger.Info("site.snapshot.hydrated", "seeded", seeded, "stored", len(snaps))
	return seeded, nil
}

// Persist stores every successful listing fetch until ctx ends. The cache is
// watched before Persist returns; the channel closes once the writer exits.
// Write failures are logged and do not stop the writer.
func (s *Service) Persist(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if s.snapshots == nil {
		close(done)
		return done
	}
	events := s.client.Watch(ctx)
	go func() {
		defer close(done)
		for evt := range events {
			if evt.Type != query.EventSuccess {
				continue
			}
			if err := s.persist(ctx, evt.State); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("site.snapshot.write_failed", "key", evt.Key.String(), "error", err)
			}
		}
	}()
	return done
}

func (s *Service) persist(ctx context.Context, state query.State) error {
	res, ok := lookupIn(s.resources, state.Key.Root())
	if !ok || !state.Key.Equal(res.Key()) {
		return nil
	}
	payload, err := json.Marshal(state.Data)
	if err != nil {
		return err
	}
	_, err = s.snapshots.Upsert(ctx, &snapshot.Snapshot{
		Key:       res.Key().String(),
		Resource:  res.Name,
		Payload:   string(payload),
		FetchedAt: state.LastFetchedAt,
	})
	if err == nil {
		s.logger.Debug("site.snapshot.written", "key", res.Key().String(), "bytes", len(payload))
	}
	return err
}

// SaveSnapshots writes every cached successful listing and reports how many
// were stored. It is the synchronous counterpart of Persist for one-shot runs.
func (s *Service) SaveSnapshots(ctx context.Context) (int, error) {
	if s.snapshots == nil {
		return 0, nil
	}
	saved := 0
	var errs []error
	for _, res := range s.resources {
		state, ok := s.client.State(res.Key())
		if !ok || !state.HasData() || state.LastFetchedAt.IsZero() {
			continue
		}
		if err := s.persist(ctx, state); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

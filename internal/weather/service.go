package weather

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/i474232898/weather-dashboard/internal/logging"
)

// DefaultFreshness is how long a snapshot is served before it is recomputed.
const DefaultFreshness = 5 * time.Minute

const refreshKey = "snapshot"

// Service orchestrates catalog, fetcher and the snapshot store.
type Service struct {
	catalog   Catalog
	fetcher   *Fetcher
	store     Store
	freshness time.Duration
	now       Clock

	// At most one refresh is in flight; concurrent misses wait for its result.
	group singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithFreshness overrides DefaultFreshness.
func WithFreshness(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.freshness = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now Clock) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new Service.
func NewService(catalog Catalog, fetcher *Fetcher, store Store, opts ...Option) *Service {
	s := &Service{
		catalog:   catalog,
		fetcher:   fetcher,
		store:     store,
		freshness: DefaultFreshness,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached snapshot while it is fresh, otherwise refreshes it.
// fromCache reports whether the snapshot was served without fetching.
func (s *Service) Get(ctx context.Context) (snapshot *Snapshot, fromCache bool, err error) {
	if snap, ok := s.store.Load(); ok && snap.Age(s.now()) < s.freshness {
		logging.Debug().Dur("age", snap.Age(s.now())).Msg("serving weather from cache")
		return snap, true, nil
	}

	snap, err := s.refreshShared(ctx)
	if err != nil {
		return nil, false, err
	}
	return snap, false, nil
}

// Refresh unconditionally fetches a new snapshot and stores it.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.refreshShared(ctx)
}

// Freshness returns the configured freshness window.
func (s *Service) Freshness() time.Duration {
	return s.freshness
}

func (s *Service) refreshShared(ctx context.Context) (*Snapshot, error) {
	v, err, shared := s.group.Do(refreshKey, func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Debug().Msg("joined in-flight weather refresh")
	}
	return v.(*Snapshot), nil
}

func (s *Service) refresh(ctx context.Context) (snap *Snapshot, err error) {
	// A panic escaping singleflight with waiters attached would kill the process.
	defer func() {
		if p := recover(); p != nil {
			logging.Error().Interface("panic", p).Msg("weather refresh panicked")
			snap, err = nil, fmt.Errorf("%w: refresh panic: %v", ErrFetchFailed, p)
		}
	}()

	started := s.now()

	cities, err := s.catalog.ListCities()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load city catalog")
		return nil, err
	}

	records, err := s.fetcher.FetchAll(ctx, cities)
	if err != nil {
		logging.Error().Err(err).Int("cities", len(cities)).Msg("weather batch failed")
		return nil, err
	}
	if len(records) != len(cities) {
		return nil, fmt.Errorf("%w: got %d records for %d cities", ErrFetchFailed, len(records), len(cities))
	}

	snap = &Snapshot{Records: records, ProducedAt: s.now()}
	s.store.Save(snap)

	logging.Info().
		Int("cities", len(records)).
		Dur("took", snap.ProducedAt.Sub(started)).
		Msg("fetched fresh weather data")

	return snap, nil
}

package weather

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-dashboard/internal/catalog"
)

// ErrFetchFailed is returned when any city in a batch could not be fetched.
var ErrFetchFailed = errors.New("weather fetch failed")

// Fetcher fans out one provider call per city.
type Fetcher struct {
	provider Provider
}

// NewFetcher creates a Fetcher backed by provider.
func NewFetcher(provider Provider) *Fetcher {
	return &Fetcher{provider: provider}
}

// FetchAll fetches every city concurrently and waits for all calls to settle.
// The result is ordered like cities. If any call fails the whole batch fails
// and no records are returned.
func (f *Fetcher) FetchAll(ctx context.Context, cities []catalog.CityRef) ([]Record, error) {
	if f.provider == nil {
		return nil, fmt.Errorf("%w: no weather provider configured", ErrFetchFailed)
	}

	records := make([]Record, len(cities))

	// The zero Group does not cancel siblings; in-flight calls always run to completion.
	var g errgroup.Group
	for i, city := range cities {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: %s (%d): provider panic: %v", ErrFetchFailed, city.Name, city.Code, p)
				}
			}()

			r, err := f.provider.Fetch(ctx, city)
			if err != nil {
				return fmt.Errorf("%w: %s (%d): %w", ErrFetchFailed, city.Name, city.Code, err)
			}
			records[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

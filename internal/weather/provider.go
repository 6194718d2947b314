package weather

import (
	"context"
	"time"

	"github.com/i474232898/weather-dashboard/internal/catalog"
)

// Provider abstracts the upstream current-weather source (e.g. OpenWeatherMap).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city catalog.CityRef) (Record, error)
}

// Catalog lists the cities the dashboard shows.
type Catalog interface {
	ListCities() ([]catalog.CityRef, error)
}

// Store holds the single process-wide snapshot.
type Store interface {
	Load() (*Snapshot, bool)
	Save(snapshot *Snapshot)
}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

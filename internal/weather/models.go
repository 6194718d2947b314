package weather

import (
	"time"
)

// Record is the normalized current weather for one city.
// JSON field names are the dashboard's data contract.
type Record struct {
	CityName    string  `json:"CityName"`
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
	TempMin     float64 `json:"tempMin"`
	TempMax     float64 `json:"tempMax"`
	Humidity    float64 `json:"humidity"`  // percent
	WindSpeed   float64 `json:"windSpeed"` // m/s (metric units)
	WindDeg     float64 `json:"windDeg"`
	Pressure    float64 `json:"pressure"`   // hPa
	Visibility  float64 `json:"visibility"` // km
	Sunrise     int64   `json:"sunrise"`    // unix seconds
	Sunset      int64   `json:"sunset"`     // unix seconds
}

// Snapshot pairs a fetched record set with the time it was produced.
// A Snapshot is never modified after construction.
type Snapshot struct {
	Records    []Record
	ProducedAt time.Time
}

// Age returns how old the snapshot is relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.ProducedAt)
}

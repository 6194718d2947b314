package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/catalog"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const colomboPayload = `{
  "name": "Colombo",
  "weather": [{"description": "clear sky"}],
  "main": {"temp": 30.2, "temp_min": 29.1, "temp_max": 31.4, "pressure": 1009, "humidity": 74},
  "visibility": 10000,
  "wind": {"speed": 4.6, "deg": 250},
  "sys": {"sunrise": 1700000000, "sunset": 1700043200}
}`

func TestOpenWeatherFetchMapsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("id") != "1248991" || q.Get("units") != "metric" || q.Get("appid") != "secret" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(colomboPayload))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret", srv.URL)
	rec, err := p.Fetch(context.Background(), catalog.CityRef{Code: 1248991, Name: "Colombo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.CityName != "Colombo" || rec.Description != "clear sky" || rec.Temp != 30.2 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.TempMin != 29.1 || rec.TempMax != 31.4 || rec.Humidity != 74 || rec.Pressure != 1009 {
		t.Fatalf("unexpected main block: %+v", rec)
	}
	if rec.WindSpeed != 4.6 || rec.WindDeg != 250 {
		t.Fatalf("unexpected wind: %+v", rec)
	}
	if rec.Visibility != 10 {
		t.Fatalf("expected 10000 m to map to 10 km, got %v", rec.Visibility)
	}
	if rec.Sunrise != 1700000000 || rec.Sunset != 1700043200 {
		t.Fatalf("unexpected sun times: %+v", rec)
	}
}

func TestOpenWeatherFetchFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"cod":401}`},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`},
		{name: "malformed", status: http.StatusOK, body: `{"name":`},
		{name: "no conditions", status: http.StatusOK, body: `{"name":"Colombo","weather":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := NewOpenWeatherProvider(srv.Client(), "secret", srv.URL)
			if _, err := p.Fetch(context.Background(), catalog.CityRef{Code: 1, Name: "Colombo"}); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "", "")
	if _, err := p.Fetch(context.Background(), catalog.CityRef{Code: 1, Name: "Colombo"}); err == nil {
		t.Fatal("expected an error without api key")
	}
}

func TestOpenWeatherCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret", srv.URL)
	city := catalog.CityRef{Code: 1, Name: "Colombo"}

	for i := 0; i < 5; i++ {
		if _, err := p.Fetch(context.Background(), city); !errors.Is(err, errServerError) {
			t.Fatalf("attempt %d: expected server error, got %v", i, err)
		}
	}

	_, err := p.Fetch(context.Background(), city)
	if !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if got := calls.Load(); got != 5 {
		t.Fatalf("expected open breaker to skip the upstream, got %d calls", got)
	}
}

func TestOpenWeatherBatchRecoversAfterBreakerTimeout(t *testing.T) {
	var (
		calls   atomic.Int32
		healthy atomic.Bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(colomboPayload))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret", srv.URL)
	p.breakerTimeout = 50 * time.Millisecond
	fetcher := weather.NewFetcher(p)

	cities := make([]catalog.CityRef, 5)
	for i := range cities {
		cities[i] = catalog.CityRef{Code: i + 1, Name: "City"}
	}

	// Enough failed batches to open every city's breaker.
	for i := 0; i < 5; i++ {
		if _, err := fetcher.FetchAll(context.Background(), cities); err == nil {
			t.Fatalf("batch %d: expected failure during outage", i)
		}
	}
	before := calls.Load()
	if _, err := fetcher.FetchAll(context.Background(), cities); !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected open breakers, got %v", err)
	}
	if got := calls.Load(); got != before {
		t.Fatalf("open breakers should not reach the upstream, got %d extra calls", got-before)
	}

	healthy.Store(true)
	time.Sleep(100 * time.Millisecond)

	before = calls.Load()
	records, err := fetcher.FetchAll(context.Background(), cities)
	if err != nil {
		t.Fatalf("expected the first batch after recovery to succeed, got %v", err)
	}
	if len(records) != len(cities) {
		t.Fatalf("expected %d records, got %d", len(cities), len(records))
	}
	if got := calls.Load() - before; got != int32(len(cities)) {
		t.Fatalf("expected one trial call per city, got %d", got)
	}
}

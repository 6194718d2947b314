package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/catalog"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenWeatherBaseURL is the public OpenWeatherMap API host.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"

// OpenWeatherProvider implements weather.Provider for the OpenWeatherMap
// current weather endpoint, keyed by city id.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client

	// One breaker per city: a batch sends exactly one call per city, so a
	// half-open breaker never rejects a sibling call of the same batch.
	mu             sync.Mutex
	circuits       map[int]*gobreaker.CircuitBreaker
	breakerTimeout time.Duration
}

func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/") + "/data/2.5/weather",
		client:  client,

		circuits:       make(map[int]*gobreaker.CircuitBreaker),
		breakerTimeout: defaultBreakerTimeout,
	}
}

func (p *OpenWeatherProvider) circuitFor(city catalog.CityRef) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	cb, ok := p.circuits[city.Code]
	if !ok {
		cb = newCircuitBreaker("openweather:"+strconv.Itoa(city.Code), p.breakerTimeout)
		p.circuits[city.Code] = cb
	}
	return cb
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// openWeatherCurrent is the subset of the OpenWeatherMap response we use.
type openWeatherCurrent struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Visibility float64 `json:"visibility"` // meters
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, city catalog.CityRef) (weather.Record, error) {
	if p.apiKey == "" {
		return weather.Record{}, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("id", strconv.Itoa(city.Code))
	values.Set("units", "metric")
	values.Set("appid", p.apiKey)

	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return weather.Record{}, err
	}

	resp, err := doRequest(ctx, p.client, p.circuitFor(city), req)
	if err != nil {
		return weather.Record{}, err
	}
	defer resp.Body.Close()

	var payload openWeatherCurrent
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Record{}, fmt.Errorf("decode openweather response: %w", err)
	}
	if len(payload.Weather) == 0 {
		return weather.Record{}, fmt.Errorf("openweather response for city %d has no conditions", city.Code)
	}

	return toRecord(city, payload), nil
}

// toRecord maps the provider payload field by field. The provider's own city
// name wins; the catalog name is used only when the payload omits it.
func toRecord(city catalog.CityRef, p openWeatherCurrent) weather.Record {
	name := p.Name
	if name == "" {
		name = city.Name
	}

	return weather.Record{
		CityName:    name,
		Description: p.Weather[0].Description,
		Temp:        p.Main.Temp,
		TempMin:     p.Main.TempMin,
		TempMax:     p.Main.TempMax,
		Humidity:    p.Main.Humidity,
		WindSpeed:   p.Wind.Speed,
		WindDeg:     p.Wind.Deg,
		Pressure:    p.Main.Pressure,
		Visibility:  p.Visibility / 1000,
		Sunrise:     p.Sys.Sunrise,
		Sunset:      p.Sys.Sunset,
	}
}

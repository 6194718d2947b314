package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrCatalogUnavailable is returned when the city source is missing, malformed or empty.
	ErrCatalogUnavailable = errors.New("city catalog unavailable")

	// ErrNoCities marks an empty catalog. It is always reported together with ErrCatalogUnavailable.
	ErrNoCities = errors.New("no cities")
)

var validate = validator.New()

// CityRef identifies a city the upstream provider knows by numeric id.
type CityRef struct {
	Code int    `json:"CityCode" validate:"gt=0"`
	Name string `json:"CityName" validate:"required"`
}

// FileCatalog reads the city list from a bundled JSON document of the form
// {"List": [{"CityCode": 1248991, "CityName": "Colombo"}]}.
type FileCatalog struct {
	path string
}

// NewFileCatalog creates a catalog backed by the file at path.
func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

// ListCities reads the file on every call and returns the entries in file order.
func (c *FileCatalog) ListCities() ([]CityRef, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) ([]CityRef, error) {
	// List is a pointer so a missing or null list is told apart from [].
	var doc struct {
		List *[]CityRef `json:"List"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if doc.List == nil {
		return nil, fmt.Errorf("%w: document has no List", ErrCatalogUnavailable)
	}

	cities := *doc.List
	if len(cities) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, ErrNoCities)
	}

	for i, city := range cities {
		if err := validate.Struct(city); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCatalogUnavailable, i, err)
		}
	}

	return cities, nil
}

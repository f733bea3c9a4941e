// Package venue serves the built-in list of event locations.
package venue

import (
	_ "embed"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"

	"confernet/internal/domain"
)

//go:embed venues.yaml
var defaultVenues []byte

const mapsBaseURL = "https://maps.google.com/?q="

type catalog struct {
	venues []domain.Venue
	byMap  map[string]int
}

// NewCatalog returns the embedded venue catalog.
func NewCatalog() (domain.VenueCatalog, error) {
	return Parse(defaultVenues)
}

// Parse builds a catalog from YAML. Entries without a map URL get one derived from their city.
func Parse(data []byte) (domain.VenueCatalog, error) {
	var venues []domain.Venue
	if err := yaml.Unmarshal(data, &venues); err != nil {
		return nil, fmt.Errorf("parse venues: %w", err)
	}
	c := &catalog{venues: venues, byMap: make(map[string]int, len(venues))}
	for i := range c.venues {
		v := &c.venues[i]
		if v.Name == "" || v.City == "" {
			return nil, fmt.Errorf("parse venues: entry %d needs a name and a city", i)
		}
		if v.MapURL == "" {
			v.MapURL = MapURL(v.City)
		}
		if _, dup := c.byMap[v.MapURL]; !dup {
			c.byMap[v.MapURL] = i
		}
	}
	return c, nil
}

// MapURL links to a map search for location.
func MapURL(location string) string {
	return mapsBaseURL + url.PathEscape(location)
}

func (c *catalog) List() []domain.Venue {
	out := make([]domain.Venue, len(c.venues))
	copy(out, c.venues)
	return out
}

func (c *catalog) ByMapURL(mapURL string) (domain.Venue, bool) {
	i, ok := c.byMap[mapURL]
	if !ok {
		return domain.Venue{}, false
	}
	return c.venues[i], true
}

package domain

import (
	"fmt"
	"sort"
)

// City is one row of the static reference table.
type City struct {
	ID         string
	Name       string
	Province   string
	Lat        *float64
	Lon        *float64
	LocationID string // QWeather location ID; empty means look it up by name
}

// HasCoordinates reports whether both coordinates are known.
func (c City) HasCoordinates() bool { return c.Lat != nil && c.Lon != nil }

// Reference is a read-only city lookup built once per run.
type Reference struct {
	cities map[string]City
	ids    []string
}

// NewReference indexes cities by ID. Duplicate IDs are rejected.
func NewReference(cities []City) (*Reference, error) {
	r := &Reference{cities: make(map[string]City, len(cities))}
	for _, c := range cities {
		if c.ID == "" {
			return nil, fmt.Errorf("reference city %q has no id", c.Name)
		}
		if _, dup := r.cities[c.ID]; dup {
			return nil, fmt.Errorf("duplicate reference city id %q", c.ID)
		}
		r.cities[c.ID] = c
		r.ids = append(r.ids, c.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Lookup returns the city with the given ID.
func (r *Reference) Lookup(id string) (City, bool) {
	c, ok := r.cities[id]
	return c, ok
}

// Province returns the province of a city, or a *MappingError when the city
// is unknown or has an empty province.
func (r *Reference) Province(id string) (string, error) {
	c, ok := r.cities[id]
	if !ok || c.Province == "" {
		return "", &MappingError{CityID: id}
	}
	return c.Province, nil
}

// Cities returns all cities ordered by ID.
func (r *Reference) Cities() []City {
	out := make([]City, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.cities[id])
	}
	return out
}

// Len returns the number of cities.
func (r *Reference) Len() int { return len(r.ids) }

// CheckProvinces verifies every given city ID maps to a province. The first
// unmapped ID in sorted order is reported, with the rest attached.
func (r *Reference) CheckProvinces(ids []string) error {
	var missing []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := r.Province(id); err != nil {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MappingError{CityID: missing[0], Others: missing[1:]}
}

package domain

import (
	"context"
	"log/slog"
)

// EnrichCityCoordinates fills in missing coordinates for a reference city.
// A nil geocoder, a city that already has coordinates, a lookup failure, or an
// empty result all return the city unchanged.
func EnrichCityCoordinates(ctx context.Context, city City, geocoder Geocoder, logger *slog.Logger) City {
	if geocoder == nil || city.HasCoordinates() || city.Name == "" {
		return city
	}

	result, err := geocoder.ForwardGeocode(ctx, city.Name, city.Province)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"city_id", city.ID,
			"name", city.Name,
			"province", city.Province,
			"error", err,
		)
		return city
	}
	if result.Lat == 0 && result.Lon == 0 {
		return city
	}

	lat, lon := result.Lat, result.Lon
	city.Lat = &lat
	city.Lon = &lon
	return city
}

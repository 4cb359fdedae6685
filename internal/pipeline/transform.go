package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// CityEnricher fills in missing reference coordinates through an optional
// geocoder before the daily table is annotated.
type CityEnricher struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewCityEnricher creates a CityEnricher. Pass a nil geocoder to disable
// geocoding enrichment.
func NewCityEnricher(geocoder domain.Geocoder, logger *slog.Logger) *CityEnricher {
	return &CityEnricher{
		geocoder: geocoder,
		logger:   logger,
	}
}

// Enrich returns a copy of cities with coordinates resolved where possible.
// It reports how many cities gained coordinates.
func (e *CityEnricher) Enrich(ctx context.Context, cities []domain.City) ([]domain.City, int) {
	out := make([]domain.City, len(cities))
	copy(out, cities)
	if e == nil || e.geocoder == nil {
		return out, 0
	}

	resolved := 0
	for i, c := range out {
		if ctx.Err() != nil {
			break
		}
		enriched := domain.EnrichCityCoordinates(ctx, c, e.geocoder, e.logger)
		if !c.HasCoordinates() && enriched.HasCoordinates() {
			resolved++
		}
		out[i] = enriched
	}
	return out, resolved
}

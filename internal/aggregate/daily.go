package aggregate

import (
	"errors"
	"sort"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// DailyResult is the outcome of building the canonical daily table.
type DailyResult struct {
	Records    []domain.WeatherRecord
	Rejected   []*domain.ValidationError
	Duplicates int
	// Unmapped lists city IDs absent from the reference table, sorted.
	Unmapped []string
}

type dailyCandidate struct {
	rec  domain.WeatherRecord
	file string
}

// BuildDaily parses raw rows, drops malformed ones, keeps one row per
// (city, date), and annotates each row with reference data. ref may be nil.
//
// On conflict the most recently collected row wins. Equal collection times
// prefer historical over forecast, then the lexicographically later file.
func BuildDaily(raws []domain.RawRecord, ref *domain.Reference) DailyResult {
	var res DailyResult
	best := make(map[string]dailyCandidate, len(raws))

	for _, raw := range raws {
		rec, err := domain.ParseRawRecord(raw)
		if err != nil {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				verr = &domain.ValidationError{File: raw.File, Line: raw.Line, CityID: raw.CityID, Reason: err.Error()}
			}
			res.Rejected = append(res.Rejected, verr)
			continue
		}

		key := rec.Key()
		if cur, ok := best[key]; ok {
			res.Duplicates++
			if !supersedes(rec, raw.File, cur) {
				continue
			}
		}
		best[key] = dailyCandidate{rec: rec, file: raw.File}
	}

	res.Records = make([]domain.WeatherRecord, 0, len(best))
	unmapped := map[string]bool{}
	for _, c := range best {
		rec := c.rec
		if city, ok := lookup(ref, rec.CityID); ok {
			rec.CityName = city.Name
			rec.Province = city.Province
			rec.Lat = city.Lat
			rec.Lon = city.Lon
		} else {
			unmapped[rec.CityID] = true
		}
		res.Records = append(res.Records, rec)
	}
	sortRecords(res.Records)
	res.Unmapped = sortedKeys(unmapped)

	return res
}

func supersedes(rec domain.WeatherRecord, file string, cur dailyCandidate) bool {
	if !rec.CollectedAt.Equal(cur.rec.CollectedAt) {
		return rec.CollectedAt.After(cur.rec.CollectedAt)
	}
	if rec.Source != cur.rec.Source {
		return rec.Source == domain.SourceHistorical
	}
	return file > cur.file
}

func lookup(ref *domain.Reference, id string) (domain.City, bool) {
	if ref == nil {
		return domain.City{}, false
	}
	return ref.Lookup(id)
}

func sortRecords(records []domain.WeatherRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CityID != records[j].CityID {
			return records[i].CityID < records[j].CityID
		}
		return records[i].Date.Before(records[j].Date)
	})
}

package domain

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Artifacts carry a header on line 1, so row i sits on line i+2.
func tableLine(i int) int { return i + 2 }

// CheckDailyTable verifies a decoded daily table: every row passes the
// record constraints and no (city, date) key appears twice.
func CheckDailyTable(rows []WeatherRecord) error {
	seen := make(map[string]int, len(rows))
	for i, r := range rows {
		if err := checkStruct(r, r.CityID, i); err != nil {
			return err
		}
		if r.Date.IsZero() {
			return &ValidationError{Line: tableLine(i), CityID: r.CityID, Field: "date", Reason: "missing"}
		}
		if r.TempMin != nil && r.TempMax != nil && *r.TempMin > *r.TempMax {
			return &ValidationError{
				Line:   tableLine(i),
				CityID: r.CityID,
				Field:  "temp_min",
				Value:  strconv.FormatFloat(*r.TempMin, 'f', -1, 64),
				Reason: "greater than temp_max " + strconv.FormatFloat(*r.TempMax, 'f', -1, 64),
			}
		}
		if err := checkUnique(seen, r.Key(), r.CityID, i); err != nil {
			return err
		}
	}
	return nil
}

// CheckMonthlyTable verifies a decoded monthly table: field ranges, a day
// count no larger than the month, and one row per (city, month).
func CheckMonthlyTable(rows []MonthlySummary) error {
	seen := make(map[string]int, len(rows))
	for i, m := range rows {
		if err := checkStruct(m, m.CityID, i); err != nil {
			return err
		}
		if days := DaysIn(m.Year, m.Month); m.DayCount > days {
			return &ValidationError{
				Line:   tableLine(i),
				CityID: m.CityID,
				Field:  "day_count",
				Value:  strconv.Itoa(m.DayCount),
				Reason: fmt.Sprintf("exceeds %d days in %s", days, m.Period()),
			}
		}
		if err := checkUnique(seen, m.CityID+"|"+m.Period(), m.CityID, i); err != nil {
			return err
		}
	}
	return nil
}

// CheckYearlyTable verifies a decoded yearly table: field ranges and one row
// per (city, year).
func CheckYearlyTable(rows []YearlySummary) error {
	seen := make(map[string]int, len(rows))
	for i, y := range rows {
		if err := checkStruct(y, y.CityID, i); err != nil {
			return err
		}
		if err := checkUnique(seen, y.CityID+"|"+y.Period(), y.CityID, i); err != nil {
			return err
		}
	}
	return nil
}

func checkStruct(v any, cityID string, i int) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Line:   tableLine(i),
			CityID: cityID,
			Field:  columnName(fe.Field()),
			Value:  fmt.Sprint(derefValue(fe.Value())),
			Reason: "failed " + fe.Tag() + " " + fe.Param(),
		}
	}
	return &ValidationError{Line: tableLine(i), CityID: cityID, Reason: err.Error()}
}

func checkUnique(seen map[string]int, key, cityID string, i int) error {
	if first, ok := seen[key]; ok {
		return &ValidationError{
			Line:   tableLine(i),
			CityID: cityID,
			Field:  "key",
			Value:  key,
			Reason: fmt.Sprintf("duplicate of line %d", tableLine(first)),
		}
	}
	seen[key] = i
	return nil
}

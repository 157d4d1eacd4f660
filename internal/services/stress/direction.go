package stress

import (
	"fmt"
	"sort"
	"time"

	"StressPulse/internal/domain/models"
)

// DirectionMap assigns each indicator the sign that makes "higher = more
// stress" hold uniformly: +1 keeps the rank, -1 flips it to 1-rank. Static
// per configuration epoch.
type DirectionMap map[string]int

// Validate rejects any sign other than +1 or -1.
func (d DirectionMap) Validate() error {
	for code, sign := range d {
		if sign != 1 && sign != -1 {
			return &models.ConfigError{
				Field:  "directions." + code,
				Reason: fmt.Sprintf("direction must be +1 or -1, got %d", sign),
			}
		}
	}
	return nil
}

// Direction returns the sign for an indicator. A missing entry is a hard
// precondition failure, never a soft default: a guessed sign would silently
// corrupt the composite's meaning.
func (d DirectionMap) Direction(code string) (int, error) {
	sign, ok := d[code]
	if !ok {
		return 0, &models.MissingDirectionError{IndicatorCode: code}
	}
	return sign, nil
}

// ApplyDirection fills DirectedRank on each ranked value according to the
// indicator's sign. Nil ranks stay nil.
func ApplyDirection(ranked []models.RankedValue, sign int) []models.RankedValue {
	out := make([]models.RankedValue, len(ranked))
	for i, rv := range ranked {
		out[i] = rv
		if rv.Rank == nil {
			continue
		}
		dr := *rv.Rank
		if sign < 0 {
			dr = 1 - dr
		}
		out[i].DirectedRank = &dr
	}
	return out
}

// BuildPanel aligns per-indicator directed rank series into a date-by-code
// panel. Codes and dates come out sorted; cells with no directed rank for a
// date are nil.
func BuildPanel(directed map[string][]models.RankedValue) models.DirectedRankPanel {
	codes := make([]string, 0, len(directed))
	for code := range directed {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	dateSet := make(map[time.Time]struct{})
	for _, series := range directed {
		for _, rv := range series {
			dateSet[rv.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	values := make([][]*float64, len(dates))
	for i := range values {
		values[i] = make([]*float64, len(codes))
	}
	for j, code := range codes {
		for _, rv := range directed[code] {
			if rv.DirectedRank != nil {
				values[index[rv.Date]][j] = rv.DirectedRank
			}
		}
	}

	return models.DirectedRankPanel{Codes: codes, Dates: dates, Values: values}
}

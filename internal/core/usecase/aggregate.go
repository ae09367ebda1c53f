package usecase

import (
	"strconv"
	"strings"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

// BuildBuckets groups normalized rows into per-day candidate temperature
// values for one site. Rows without a resolvable day are dropped and counted;
// unparseable channel values are skipped per value, so a row with one valid
// and one invalid reading still contributes the valid one. Bucket order is
// meaningless: values are neither sorted nor deduplicated.
func BuildBuckets(site domain.Site, rows []domain.NormalizedRow) (map[string][]float64, domain.DropStats) {
	buckets := make(map[string][]float64)
	var stats domain.DropStats

	channels := site.Channels()
	for _, row := range rows {
		day, ok := rowDay(row)
		if !ok {
			stats.RowsNoDate++
			continue
		}
		for _, channel := range channels {
			raw, present := row.Channels[channel]
			if !present || raw == "" {
				continue
			}
			value, err := parseTemp(raw)
			if err != nil {
				stats.ValuesBadFloat++
				continue
			}
			buckets[day] = append(buckets[day], value)
		}
	}
	return buckets, stats
}

// rowDay resolves the calendar day of a row: the normalized date column when
// present, otherwise the date portion of the timestamp column.
func rowDay(row domain.NormalizedRow) (string, bool) {
	if isDay(row.Date) {
		return row.Date, true
	}
	if row.Timestamp == "" {
		return "", false
	}
	datePart := row.Timestamp
	if i := strings.IndexAny(datePart, " T"); i > 0 {
		datePart = datePart[:i]
	}
	datePart = normalizeTimestampDate(datePart)
	if isDay(datePart) {
		return datePart, true
	}
	return "", false
}

// normalizeTimestampDate re-applies D/M/Y conversion for timestamp columns,
// which carry their own date portion and bypass the date-field normalization.
func normalizeTimestampDate(s string) string {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return s
	}
	day, month, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	if len(month) == 1 {
		month = "0" + month
	}
	if len(day) == 1 {
		day = "0" + day
	}
	return year + "-" + month + "-" + day
}

func isDay(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseTemp accepts both dot and German comma decimal separators.
func parseTemp(raw string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	return strconv.ParseFloat(cleaned, 64)
}

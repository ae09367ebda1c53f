// Package normalize maps the inconsistent headers and date formats of plant
// sensor exports into the canonical row schema. Everything here is pure and
// total: malformed input passes through so downstream stages can skip it
// explicitly instead of the normalizer guessing.
package normalize

import (
	"strings"
	"unicode"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

// header targets beyond the temperature channels
const (
	targetDate      = "date"
	targetTime      = "time"
	targetTimestamp = "timestamp"
)

// synonyms maps cleaned, lower-cased raw headers to canonical targets. The
// German forms come from the two plant controller exports, the English ones
// from hand-edited spreadsheets that occasionally reach us.
var synonyms = map[string]string{
	"datum": targetDate,
	"date":  targetDate,
	"tag":   targetDate,

	"uhrzeit": targetTime,
	"zeit":    targetTime,
	"time":    targetTime,

	"zeitstempel": targetTimestamp,
	"timestamp":   targetTimestamp,
	"datum/zeit":  targetTimestamp,

	"temperatur reaktor 1": string(domain.ChannelReactor1),
	"temp. reaktor 1":      string(domain.ChannelReactor1),
	"temp reaktor 1":       string(domain.ChannelReactor1),
	"reaktor 1":            string(domain.ChannelReactor1),
	"t reaktor 1":          string(domain.ChannelReactor1),
	"tr1":                  string(domain.ChannelReactor1),
	"reactor 1 temp":       string(domain.ChannelReactor1),

	"temperatur reaktor 2": string(domain.ChannelReactor2),
	"temp. reaktor 2":      string(domain.ChannelReactor2),
	"temp reaktor 2":       string(domain.ChannelReactor2),
	"reaktor 2":            string(domain.ChannelReactor2),
	"t reaktor 2":          string(domain.ChannelReactor2),
	"tr2":                  string(domain.ChannelReactor2),
	"reactor 2 temp":       string(domain.ChannelReactor2),

	"prozesstemperatur":   string(domain.ChannelProcess),
	"prozess-temperatur":  string(domain.ChannelProcess),
	"prozess temperatur":  string(domain.ChannelProcess),
	"process temperature": string(domain.ChannelProcess),
	"temperatur":          string(domain.ChannelProcess),
}

type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// Normalize maps one raw upload row into the canonical schema. Known headers
// land in the typed fields and channel map, everything else is preserved in
// Extra under its cleaned original header.
func (n *Normalizer) Normalize(raw map[string]string) domain.NormalizedRow {
	row := domain.NormalizedRow{
		Channels: make(map[domain.Channel]string),
		Extra:    make(map[string]string),
	}

	for rawKey, rawValue := range raw {
		key := Clean(rawKey)
		value := Clean(rawValue)

		switch synonyms[dropUnitSuffix(strings.ToLower(key))] {
		case targetDate:
			row.Date = NormalizeDate(value)
		case targetTime:
			row.Time = value
		case targetTimestamp:
			row.Timestamp = value
		case string(domain.ChannelReactor1):
			row.Channels[domain.ChannelReactor1] = value
		case string(domain.ChannelReactor2):
			row.Channels[domain.ChannelReactor2] = value
		case string(domain.ChannelProcess):
			row.Channels[domain.ChannelProcess] = value
		default:
			if key != "" {
				row.Extra[key] = value
			}
		}
	}
	return row
}

// Clean strips non-printable characters and collapses runs of whitespace.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dropUnitSuffix removes a trailing unit annotation like "[°C]" or "(°C)" so
// "Temperatur Reaktor 1 [°C]" matches the synonym table.
func dropUnitSuffix(header string) string {
	for _, open := range []string{"[", "("} {
		if i := strings.LastIndex(header, open); i > 0 {
			header = header[:i]
		}
	}
	return strings.TrimSpace(header)
}

// NormalizeDate converts D/M/Y and DD/MM/YYYY dates to ISO YYYY-MM-DD,
// expanding two-digit years with a "20" prefix. Values already in ISO form
// and values matching neither pattern pass through unchanged.
func NormalizeDate(value string) string {
	if isISODate(value) {
		return value
	}

	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return value
	}
	day, month, year := parts[0], parts[1], parts[2]
	if !allDigits(day) || !allDigits(month) || !allDigits(year) {
		return value
	}
	if len(day) < 1 || len(day) > 2 || len(month) < 1 || len(month) > 2 {
		return value
	}
	switch len(year) {
	case 2:
		year = "20" + year
	case 4:
	default:
		return value
	}
	return year + "-" + pad2(month) + "-" + pad2(day)
}

func isISODate(value string) bool {
	if len(value) != 10 || value[4] != '-' || value[7] != '-' {
		return false
	}
	return allDigits(value[:4]) && allDigits(value[5:7]) && allDigits(value[8:])
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

package normalize

import (
	"testing"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-01", "2024-03-01"},
		{"06/05/25", "2025-05-06"},
		{"not-a-date", "not-a-date"},
		{"01/03/2024", "2024-03-01"},
		{"1/3/2024", "2024-03-01"},
		{"1/3/24", "2024-03-01"},
		{"31/12/99", "2099-12-31"},
		{"03/2024", "03/2024"},
		{"2024/03/01/x", "2024/03/01/x"},
		{"ab/cd/efgh", "ab/cd/efgh"},
		{"001/03/2024", "001/03/2024"},
		{"1/3/202", "1/3/202"},
		{"", ""},
		{"kein datum", "kein datum"},
	}

	for _, tc := range cases {
		if got := NormalizeDate(tc.in); got != tc.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Temperatur   Reaktor 1 ", "Temperatur Reaktor 1"},
		{"Datum\t", "Datum"},
		{"Zeit\x00stempel", "Zeitstempel"},
		{"a\nb", "a b"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Clean(tc.in); got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeMapsGermanHeaders(t *testing.T) {
	n := New()

	row := n.Normalize(map[string]string{
		"Datum":                     "01/03/2024",
		"Uhrzeit":                   "08:15",
		"Temperatur Reaktor 1 [°C]": "612,5",
		"Temperatur Reaktor 2":      "640",
		"Chargennummer":             "42",
	})

	if row.Date != "2024-03-01" {
		t.Fatalf("Date = %q, want 2024-03-01", row.Date)
	}
	if row.Time != "08:15" {
		t.Fatalf("Time = %q, want 08:15", row.Time)
	}
	if got := row.Channels[domain.ChannelReactor1]; got != "612,5" {
		t.Fatalf("reactor1 = %q, want 612,5", got)
	}
	if got := row.Channels[domain.ChannelReactor2]; got != "640" {
		t.Fatalf("reactor2 = %q, want 640", got)
	}
	if got := row.Extra["Chargennummer"]; got != "42" {
		t.Fatalf("Extra[Chargennummer] = %q, want 42", got)
	}
}

func TestNormalizeMapsProcessHeaders(t *testing.T) {
	n := New()

	row := n.Normalize(map[string]string{
		"Zeitstempel":       "2024-03-01 08:15:00",
		"Prozesstemperatur": "655",
	})
	if row.Timestamp != "2024-03-01 08:15:00" {
		t.Fatalf("Timestamp = %q", row.Timestamp)
	}
	if got := row.Channels[domain.ChannelProcess]; got != "655" {
		t.Fatalf("process = %q, want 655", got)
	}

	// bare "Temperatur" is the single-process controller's export header
	row = n.Normalize(map[string]string{"Temperatur (°C)": "700"})
	if got := row.Channels[domain.ChannelProcess]; got != "700" {
		t.Fatalf("process from bare Temperatur = %q, want 700", got)
	}
}

func TestNormalizeKeepsUnknownHeadersInExtra(t *testing.T) {
	n := New()
	row := n.Normalize(map[string]string{"Druck [bar]": "1,2", "": "ignored"})
	if len(row.Channels) != 0 {
		t.Fatalf("unexpected channels %v", row.Channels)
	}
	if got := row.Extra["Druck [bar]"]; got != "1,2" {
		t.Fatalf("Extra = %v", row.Extra)
	}
	if _, ok := row.Extra[""]; ok {
		t.Fatalf("empty header should be dropped")
	}
}

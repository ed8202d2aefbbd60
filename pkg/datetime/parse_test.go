package datetime

import (
	"math"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-05-20")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	want := time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Errorf("expected %s, got %s", want, parsed)
	}

	for _, bad := range []string{"", "20.05.2026", "2026-13-01", "2026/05/20"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	const value = "2041-05-15"
	parsed, err := ParseDate(value)
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if got := FormatDate(parsed); got != value {
		t.Errorf("expected %q, got %q", value, got)
	}
}

func TestYearsBetween(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want float64
	}{
		{name: "common year", from: "2026-01-01", to: "2027-01-01", want: 365 / 365.25},
		{name: "leap year", from: "2028-01-01", to: "2029-01-01", want: 366 / 365.25},
		{name: "same day", from: "2026-01-01", to: "2026-01-01", want: 0},
		{name: "reversed is negative", from: "2027-01-01", to: "2026-01-01", want: -365 / 365.25},
		{name: "four years average out", from: "2026-01-01", to: "2030-01-01", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := YearsBetween(MustParseDate(tt.from), MustParseDate(tt.to))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %.6f years, got %.6f", tt.want, got)
			}
		})
	}
}

func TestMustParseDatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid date")
		}
	}()
	MustParseDate("not a date")
}

package financial

import (
	"testing"
	"time"

	"mandi-backend/internal/apperr"
)

func TestResolveRange(t *testing.T) {
	// Wednesday
	today := time.Date(2024, 2, 14, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		preset   Preset
		from, to string
	}{
		{PresetToday, "2024-02-14", "2024-02-14"},
		{PresetWeek, "2024-02-11", "2024-02-17"},
		{PresetMonth, "2024-02-01", "2024-02-29"},
		{"", "2024-02-01", "2024-02-29"},
	}
	for _, tc := range cases {
		from, to, err := ResolveRange(tc.preset, "", "", today)
		if err != nil {
			t.Fatalf("%q: %v", tc.preset, err)
		}
		if from != tc.from || to != tc.to {
			t.Fatalf("%q = %s..%s, want %s..%s", tc.preset, from, to, tc.from, tc.to)
		}
	}

	from, to, err := ResolveRange(PresetCustom, "2024-01-05", "2024-01-20", today)
	if err != nil || from != "2024-01-05" || to != "2024-01-20" {
		t.Fatalf("custom = %s..%s %v", from, to, err)
	}

	bad := [][2]string{{"2024-01-20", "2024-01-05"}, {"", "2024-01-05"}, {"2024-1-5", "2024-01-20"}}
	for _, b := range bad {
		if _, _, err := ResolveRange(PresetCustom, b[0], b[1], today); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("custom %v: expected validation error, got %v", b, err)
		}
	}
	if _, _, err := ResolveRange("year", "", "", today); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown preset: %v", err)
	}
}

func TestResolveRangeWeekOnSunday(t *testing.T) {
	sunday := time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC)
	from, to, err := ResolveRange(PresetWeek, "", "", sunday)
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if from != "2024-03-31" || to != "2024-04-06" {
		t.Fatalf("week = %s..%s", from, to)
	}
}

package statwatch_test

import (
	"errors"
	"testing"
	"time"

	"github.com/macrat/statwatch/lib-statwatch"
)

func TestParsePageTime_valid(t *testing.T) {
	tests := []struct {
		Input string
		Want  time.Time
	}{
		{"November 28, 2024 04:47 PM", time.Date(2024, 11, 29, 0, 47, 0, 0, time.UTC)},
		{"November 28, 2024 4:47 PM", time.Date(2024, 11, 29, 0, 47, 0, 0, time.UTC)},
		{"Nov 28, 2024 16:47", time.Date(2024, 11, 29, 0, 47, 0, 0, time.UTC)},
		{"Nov 28, 2024 04:47 AM", time.Date(2024, 11, 28, 12, 47, 0, 0, time.UTC)},
		{"  July  4,  2025   09:00  ", time.Date(2025, 7, 4, 17, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.Input, func(t *testing.T) {
			actual, err := statwatch.ParsePageTime(tt.Input)
			if err != nil {
				t.Fatalf("failed to parse: %s", err)
			}
			if !actual.Equal(tt.Want) {
				t.Errorf("expected %s but got %s", tt.Want, actual)
			}
		})
	}
}

func TestParsePageTime_invalid(t *testing.T) {
	tests := []string{
		"",
		"November 28",
		"28 November 2024 16:47",
		"Nov , 2024 16:47",
		"heute um 20:26 Uhr",
	}

	for _, tt := range tests {
		_, err := statwatch.ParsePageTime(tt)
		if !errors.Is(err, statwatch.ErrInvalidTime) {
			t.Errorf("%q: expected ErrInvalidTime but got %v", tt, err)
		}
	}
}

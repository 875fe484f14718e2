package services

import (
	"testing"
	"time"
)

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "afternoon timestamp",
			in:   time.Date(2024, time.March, 10, 15, 22, 0, 0, time.UTC),
			want: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "already midnight",
			in:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "last second of the day",
			in:   time.Date(2024, time.December, 31, 23, 59, 59, 999999999, time.UTC),
			want: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-utc location converted first",
			in:   time.Date(2024, time.March, 10, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			want: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeDay(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("normalizeDay(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("normalizeDay(%v) location = %v, want UTC", tt.in, got.Location())
			}
		})
	}
}

func TestNormalizeDayIdempotent(t *testing.T) {
	in := time.Date(2024, time.July, 4, 9, 30, 0, 0, time.UTC)
	once := normalizeDay(in)
	twice := normalizeDay(once)
	if !once.Equal(twice) {
		t.Errorf("normalizeDay not idempotent: %v != %v", once, twice)
	}
}

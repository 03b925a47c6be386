package services

import (
	"testing"
	"time"
)

func TestParseDailyTime(t *testing.T) {
	tests := []struct {
		in      string
		want    DailyTime
		wantErr bool
	}{
		{"09:00", DailyTime{9, 0}, false},
		{" 21:45 ", DailyTime{21, 45}, false},
		{"9:00", DailyTime{}, true},
		{"09:5", DailyTime{}, true},
		{"00:00", DailyTime{0, 0}, false},
		{"24:00", DailyTime{}, true},
		{"nine", DailyTime{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDailyTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDailyTime(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseDailyTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextRun(t *testing.T) {
	at := DailyTime{Hour: 9}
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before time - same day",
			now:  time.Date(2024, 6, 3, 8, 59, 0, 0, time.UTC),
			want: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at time - next day",
			now:  time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "after time on month end - next month",
			now:  time.Date(2024, 6, 30, 22, 0, 0, 0, time.UTC),
			want: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextRun(tt.now, at); !got.Equal(tt.want) {
				t.Fatalf("NextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestDailyChecker_IsDue(t *testing.T) {
	checker := DailyChecker{}
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		lastRun time.Time
		want    bool
	}{
		{"never run - is due", time.Time{}, true},
		{"ran today - not due", time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), false},
		{"ran yesterday - is due", time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastRun, now); got != tt.want {
				t.Errorf("DailyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

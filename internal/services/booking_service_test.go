package services

import (
	"math"
	"testing"
)

func TestLessonHours(t *testing.T) {
	tests := []struct {
		start string
		end   string
		want  float64
	}{
		{"10:00", "11:00", 1},
		{"09:30", "11:00", 1.5},
		{"23:00", "00:00", 1},
		{"23:30", "00:30", 1},
		{"23:59", "00:59", 1},
	}
	for _, tt := range tests {
		got, err := lessonHours(tt.start, tt.end)
		if err != nil {
			t.Errorf("lessonHours(%s, %s): %v", tt.start, tt.end, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("lessonHours(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestLessonHoursRejectsMalformedTimes(t *testing.T) {
	if _, err := lessonHours("25:00", "26:00"); err == nil {
		t.Errorf("expected error for out-of-range start time")
	}
	if _, err := lessonHours("10:00", "eleven"); err == nil {
		t.Errorf("expected error for malformed end time")
	}
}

package engine_test

import (
	"testing"
	"time"

	"brokerage-app-server/internal/engine"
	"brokerage-app-server/internal/models"
)

func TestClassify(t *testing.T) {
	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      models.AppointmentStatus
		scheduledAt time.Time
		want        engine.TemporalClass
	}{
		{
			name:        "scheduled in the past is overdue",
			status:      models.StatusScheduled,
			scheduledAt: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
			want:        engine.ClassOverdue,
		},
		{
			name:        "one second in the past is overdue",
			status:      models.StatusScheduled,
			scheduledAt: now.Add(-time.Second),
			want:        engine.ClassOverdue,
		},
		{
			name:        "exactly now is due today, not overdue",
			status:      models.StatusScheduled,
			scheduledAt: now,
			want:        engine.ClassDueToday,
		},
		{
			name:        "later today is due today",
			status:      models.StatusScheduled,
			scheduledAt: time.Date(2025, 3, 11, 18, 30, 0, 0, time.UTC),
			want:        engine.ClassDueToday,
		},
		{
			name:        "tomorrow is upcoming",
			status:      models.StatusScheduled,
			scheduledAt: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
			want:        engine.ClassUpcoming,
		},
		{
			name:        "completed is never overdue",
			status:      models.StatusCompleted,
			scheduledAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			want:        engine.ClassUpcoming,
		},
		{
			name:        "not completed is never overdue",
			status:      models.StatusNotCompleted,
			scheduledAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			want:        engine.ClassUpcoming,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Classify(tt.status, tt.scheduledAt, now); got != tt.want {
				t.Errorf("Classify(%s, %v) = %s, want %s", tt.status, tt.scheduledAt, got, tt.want)
			}
		})
	}
}

// An appointment that became overdue must stay overdue as the clock steps
// across a day boundary; it never drifts back to upcoming.
func TestClassifyAcrossMidnight(t *testing.T) {
	scheduledAt := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)

	steps := []time.Time{
		time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC), // same evening
		time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC),   // just past midnight
		time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC),  // days later
	}
	for _, now := range steps {
		if got := engine.Classify(models.StatusScheduled, scheduledAt, now); got != engine.ClassOverdue {
			t.Errorf("Classify at %v = %s, want %s", now, got, engine.ClassOverdue)
		}
	}
}

// DueToday follows the calendar day of the caller's location, not UTC.
func TestClassifySameDayUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 23:00 UTC Mar 11 is 09:00 Mar 12 in UTC+10.
	scheduledAt := time.Date(2025, 3, 11, 23, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 12, 8, 0, 0, 0, loc)

	if got := engine.Classify(models.StatusScheduled, scheduledAt, now); got != engine.ClassDueToday {
		t.Errorf("Classify = %s, want %s", got, engine.ClassDueToday)
	}
}

func TestWithClass(t *testing.T) {
	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	appointments := []models.Appointment{
		{Status: models.StatusScheduled, ScheduledAt: now.Add(-time.Hour)},
		{Status: models.StatusScheduled, ScheduledAt: now.Add(time.Hour)},
		{Status: models.StatusCompleted, ScheduledAt: now.Add(-time.Hour)},
	}

	classified := engine.WithClass(appointments, now)
	want := []engine.TemporalClass{engine.ClassOverdue, engine.ClassDueToday, engine.ClassUpcoming}
	for i, w := range want {
		if classified[i].TemporalClass != w {
			t.Errorf("appointment %d: got %s, want %s", i, classified[i].TemporalClass, w)
		}
	}
}

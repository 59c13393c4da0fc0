package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"PendingToConfirmed", StatusPending, StatusConfirmed, true},
		{"PendingToCancelled", StatusPending, StatusCancelled, true},
		{"PendingToCompleted", StatusPending, StatusCompleted, false},
		{"ConfirmedToCompleted", StatusConfirmed, StatusCompleted, true},
		{"ConfirmedToCancelled", StatusConfirmed, StatusCancelled, true},
		{"ConfirmedToPending", StatusConfirmed, StatusPending, false},
		{"CompletedIsTerminal", StatusCompleted, StatusCancelled, false},
		{"CancelledIsTerminal", StatusCancelled, StatusPending, false},
		{"UnknownStatus", "rescheduled", StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	app := &Appointment{
		StartsAt: base,
		EndsAt:   base.Add(time.Hour),
	}

	// Полуоткрытые интервалы: касание границ не считается пересечением
	assert.False(t, app.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.False(t, app.Overlaps(base.Add(-time.Hour), base))
	assert.True(t, app.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, app.Overlaps(base.Add(-30*time.Minute), base.Add(30*time.Minute)))
	assert.True(t, app.Overlaps(base.Add(10*time.Minute), base.Add(20*time.Minute)))
	assert.True(t, app.Overlaps(base.Add(-time.Minute), base.Add(61*time.Minute)))
}

func TestAppointmentOccupies(t *testing.T) {
	assert.True(t, (&Appointment{Status: StatusPending}).Occupies())
	assert.True(t, (&Appointment{Status: StatusConfirmed}).Occupies())
	assert.True(t, (&Appointment{Status: StatusCompleted}).Occupies())
	assert.False(t, (&Appointment{Status: StatusCancelled}).Occupies())

	assert.True(t, (&Appointment{Status: StatusPending}).IsActive())
	assert.False(t, (&Appointment{Status: StatusCompleted}).IsActive())
}

func TestServiceTotalDuration(t *testing.T) {
	svc := &Service{DurationMin: 45, BufferMin: 15}
	assert.Equal(t, time.Hour, svc.TotalDuration())

	noBuffer := &Service{DurationMin: 30}
	assert.Equal(t, 30*time.Minute, noBuffer.TotalDuration())
}

func TestUserStateHelpers(t *testing.T) {
	now := time.Date(2025, 6, 2, 14, 15, 0, 0, time.UTC)
	state := &UserState{
		TempData: map[string]interface{}{
			"service_id": int64(3),
			"from_json":  float64(7),
			"name":       "Алишер",
			"slot":       now.Format(time.RFC3339),
			"slot_t":     now,
		},
	}

	assert.Equal(t, int64(3), state.GetInt64("service_id"))
	assert.Equal(t, int64(7), state.GetInt64("from_json"))
	assert.Equal(t, "Алишер", state.GetString("name"))
	assert.True(t, state.GetTime("slot").Equal(now))
	assert.True(t, state.GetTime("slot_t").Equal(now))

	empty := &UserState{}
	assert.Equal(t, int64(0), empty.GetInt64("missing"))
	assert.Equal(t, "", empty.GetString("missing"))
	assert.True(t, empty.GetTime("missing").IsZero())
}

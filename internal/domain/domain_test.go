package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    AvailabilityRule
		wantErr error
	}{
		{"valid", AvailabilityRule{Weekday: 1, StartMinute: 540, EndMinute: 1020}, nil},
		{"whole day", AvailabilityRule{Weekday: 0, StartMinute: 0, EndMinute: 1440}, nil},
		{"empty range", AvailabilityRule{Weekday: 1, StartMinute: 600, EndMinute: 600}, ErrInvalidRuleRange},
		{"inverted", AvailabilityRule{Weekday: 1, StartMinute: 700, EndMinute: 600}, ErrInvalidRuleRange},
		{"end past midnight", AvailabilityRule{Weekday: 1, StartMinute: 0, EndMinute: 1441}, ErrInvalidRuleRange},
		{"start at 1440", AvailabilityRule{Weekday: 1, StartMinute: 1440, EndMinute: 1440}, ErrInvalidRuleRange},
		{"weekday 7", AvailabilityRule{Weekday: 7, StartMinute: 0, EndMinute: 60}, ErrInvalidWeekday},
		{"negative weekday", AvailabilityRule{Weekday: -1, StartMinute: 0, EndMinute: 60}, ErrInvalidWeekday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAppointmentStatus_Transitions(t *testing.T) {
	assert.True(t, StatusScheduled.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusScheduled.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))

	assert.False(t, StatusScheduled.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
}

func TestAppointment_Overlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	a := &Appointment{Start: base, End: base.Add(30 * time.Minute)}

	assert.True(t, a.Overlaps(base.Add(15*time.Minute), base.Add(45*time.Minute)))
	assert.True(t, a.Overlaps(base.Add(-time.Hour), base.Add(time.Hour)))
	assert.False(t, a.Overlaps(base.Add(30*time.Minute), base.Add(time.Hour)), "touching ranges do not overlap")
	assert.False(t, a.Overlaps(base.Add(-30*time.Minute), base))
}

func TestAppointment_IsParticipant(t *testing.T) {
	a := &Appointment{OwnerID: 1, RequesterID: 2}
	assert.True(t, a.IsParticipant(1))
	assert.True(t, a.IsParticipant(2))
	assert.False(t, a.IsParticipant(3))
}

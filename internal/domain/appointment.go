package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// allowedTransitions статусы, в которые можно перейти из текущего
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// Appointment represents a reserved meeting between an owner and a requester
type Appointment struct {
	ID          uuid.UUID
	OwnerID     int64
	RequesterID int64
	Start       time.Time
	End         time.Time
	Title       string
	Description *string
	Status      AppointmentStatus

	ExternalEventRef  *string
	ExternalEventLink *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment still occupies its time range
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// CanBeCancelled returns true if the appointment is in a non-terminal state
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.CanTransitionTo(StatusCancelled)
}

// IsParticipant returns true if the user is the owner or the requester
func (a *Appointment) IsParticipant(userID int64) bool {
	return a.OwnerID == userID || a.RequesterID == userID
}

// Overlaps returns true if [start, end) intersects the appointment range
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.Start.Before(end) && start.Before(a.End)
}

// CanTransitionTo returns true if the state machine allows moving to next
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid returns true for known statuses
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ExternalEvent is a reference to an event created on the owner's external calendar
type ExternalEvent struct {
	Ref  string
	Link string
}

// AppointmentsFilter selects appointments relative to the current time
type AppointmentsFilter string

const (
	FilterUpcoming AppointmentsFilter = "upcoming"
	FilterPast     AppointmentsFilter = "past"
	FilterAll      AppointmentsFilter = "all"
)

// IsValid returns true for known filters
func (f AppointmentsFilter) IsValid() bool {
	return f == FilterUpcoming || f == FilterPast || f == FilterAll
}

// ParticipantAppointmentsQuery describes a listing of a participant's appointments
type ParticipantAppointmentsQuery struct {
	ParticipantID int64
	Filter        AppointmentsFilter
	Now           time.Time
}

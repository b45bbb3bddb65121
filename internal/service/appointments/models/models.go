package models

import (
	"time"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

// Request модели

// ReserveRequest запрос на резервирование интервала в журнале
type ReserveRequest struct {
	OwnerID     int64
	RequesterID int64
	Start       time.Time
	End         time.Time
	Title       string
	Description *string
}

// CancelRequest запрос на отмену встречи
type CancelRequest struct {
	UserID             int64   `json:"userId"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ListRequest запрос на получение встреч участника
type ListRequest struct {
	UserID int64  `json:"userId"`
	Filter string `json:"filter"`
}

// Response модели

// AppointmentResponse ответ с данными встречи
type AppointmentResponse struct {
	ID          string  `json:"id"`
	OwnerID     int64   `json:"ownerId"`
	RequesterID int64   `json:"requesterId"`
	Start       string  `json:"start"` // RFC 3339
	End         string  `json:"end"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`

	ExternalEventRef *string `json:"externalEventRef,omitempty"`
	MeetingLink      *string `json:"meetingLink,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком встреч
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID.String(),
		OwnerID:            a.OwnerID,
		RequesterID:        a.RequesterID,
		Start:              a.Start.Format(time.RFC3339),
		End:                a.End.Format(time.RFC3339),
		Title:              a.Title,
		Description:        a.Description,
		Status:             string(a.Status),
		ExternalEventRef:   a.ExternalEventRef,
		MeetingLink:        a.ExternalEventLink,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
	}

	for _, a := range list {
		if item := FromDomainAppointment(a); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}

	return resp
}

// ToDomainFilter конвертирует строку фильтра, пустая строка означает upcoming
func ToDomainFilter(filter string) (domain.AppointmentsFilter, bool) {
	if filter == "" {
		return domain.FilterUpcoming, true
	}
	f := domain.AppointmentsFilter(filter)
	return f, f.IsValid()
}

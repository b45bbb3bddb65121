package create_booking

import (
	"time"

	"github.com/m04kA/SMC-MeetingService/internal/service/appointments/models"
	createBooking "github.com/m04kA/SMC-MeetingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	OwnerID     int64   `json:"ownerId"`
	Start       string  `json:"start"` // RFC 3339, "2025-06-02T09:00:00Z"
	End         string  `json:"end"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// EventResponse HTTP response model
type EventResponse struct {
	ExternalRef string `json:"externalRef"`
	Link        string `json:"link"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	Appointment *models.AppointmentResponse `json:"appointment"`
	Event       *EventResponse              `json:"event,omitempty"`
	Warning     string                      `json:"warning,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(requesterID int64) (*createBooking.Request, error) {
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return nil, err
	}

	end, err := time.Parse(time.RFC3339, r.End)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		OwnerID:     r.OwnerID,
		RequesterID: requesterID,
		Start:       start,
		End:         end,
		Title:       r.Title,
		Description: r.Description,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	result := &BookingResponse{
		Appointment: models.FromDomainAppointment(resp.Appointment),
		Warning:     resp.Warning,
	}
	if resp.Event != nil {
		result.Event = &EventResponse{ExternalRef: resp.Event.Ref, Link: resp.Event.Link}
	}
	return result
}

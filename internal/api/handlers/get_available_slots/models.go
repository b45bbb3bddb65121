package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-MeetingService/internal/usecase/get_available_slots"
)

// SlotResponse HTTP response model
type SlotResponse struct {
	Start string `json:"start"` // RFC 3339
	End   string `json:"end"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date    string         `json:"date"` // YYYY-MM-DD
	OwnerID int64          `json:"ownerId"`
	Slots   []SlotResponse `json:"slots"`
}

// ToUseCaseRequest формирует запрос к use case, дата разбирается в часовом поясе loc
func ToUseCaseRequest(ownerID int64, date string, loc *time.Location) (*getAvailableSlots.Request, error) {
	day, err := time.ParseInLocation(domain.DateFormat, date, loc)
	if err != nil {
		return nil, err
	}
	return &getAvailableSlots.Request{OwnerID: ownerID, Date: day}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	result := &AvailableSlotsResponse{
		Date:    resp.Date.Format(domain.DateFormat),
		OwnerID: resp.OwnerID,
		Slots:   make([]SlotResponse, 0, len(resp.Slots)),
	}
	for _, s := range resp.Slots {
		result.Slots = append(result.Slots, SlotResponse{
			Start: s.Start.Format(time.RFC3339),
			End:   s.End.Format(time.RFC3339),
		})
	}
	return result
}

package create_booking

import (
	"time"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

// Исходы бронирования для метрик
const (
	OutcomeConfirmed     = "confirmed"
	OutcomeScheduled     = "scheduled" // резерв есть, события в календаре нет
	OutcomeSlotTaken     = "slot_taken"
	OutcomeNotAvailable  = "not_available"
	OutcomeRejected      = "rejected"
	OutcomeProviderError = "provider_error"
	OutcomeError         = "error"
)

// Settings параметры бронирования
type Settings struct {
	MinNotice                time.Duration
	RequireConnectedCalendar bool
}

// Request модель запроса на создание встречи
type Request struct {
	OwnerID     int64     // владелец календаря
	RequesterID int64     // инициатор, пользователь из X-User-ID
	Start       time.Time // начало, включительно
	End         time.Time // конец, не включительно
	Title       *string
	Description *string
}

// Response результат бронирования
// Warning непуст при частичном успехе: встреча зарезервирована, но синхронизация с календарём не прошла
type Response struct {
	Appointment *domain.Appointment
	Event       *domain.ExternalEvent
	Warning     string
}

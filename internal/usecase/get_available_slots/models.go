package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

// Settings параметры выдачи слотов
type Settings struct {
	// MinNotice минимальный запас времени до начала слота
	MinNotice time.Duration
	// RequireConnectedCalendar требовать привязанный календарь; иначе владелец без календаря считается свободным
	RequireConnectedCalendar bool
}

// Request модель запроса на получение доступных слотов
type Request struct {
	OwnerID int64     // ID владельца календаря
	Date    time.Time // День в часовом поясе расписания
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date    time.Time
	OwnerID int64
	Slots   []domain.Slot
}

package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

// RulesRepository интерфейс хранилища правил доступности
type RulesRepository interface {
	GetRules(ctx context.Context, ownerID int64) ([]domain.AvailabilityRule, error)
}

// AppointmentRepository интерфейс журнала встреч
type AppointmentRepository interface {
	// ListActiveByOwner получает неотменённые встречи владельца, пересекающие [from, to)
	ListActiveByOwner(ctx context.Context, ownerID int64, from, to time.Time) ([]*domain.Appointment, error)
}

// BusySource интерфейс внешнего календаря владельца
type BusySource interface {
	GetBusy(ctx context.Context, ownerID int64, from, to time.Time) ([]domain.BusyInterval, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

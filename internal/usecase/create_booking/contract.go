package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	"github.com/m04kA/SMC-MeetingService/internal/integrations/googlecalendar"
	"github.com/m04kA/SMC-MeetingService/internal/integrations/userservice"
	appointmentModels "github.com/m04kA/SMC-MeetingService/internal/service/appointments/models"
)

// RulesRepository интерфейс хранилища шаблонов доступности
type RulesRepository interface {
	GetRules(ctx context.Context, ownerID int64) ([]domain.AvailabilityRule, error)
}

// CalendarClient интерфейс внешнего календаря владельца
type CalendarClient interface {
	IsConnected(ctx context.Context, ownerID int64) (bool, error)
	GetBusy(ctx context.Context, ownerID int64, from, to time.Time) ([]domain.BusyInterval, error)
	CreateEvent(ctx context.Context, ownerID int64, in googlecalendar.EventInput) (*domain.ExternalEvent, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.User, error)
}

// Ledger интерфейс журнала встреч
type Ledger interface {
	Reserve(ctx context.Context, req *appointmentModels.ReserveRequest) (*domain.Appointment, error)
	Confirm(ctx context.Context, id uuid.UUID, event domain.ExternalEvent) error
}

// Metrics интерфейс учёта исходов бронирования
type Metrics interface {
	IncBooking(outcome string)
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

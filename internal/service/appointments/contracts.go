package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

// AppointmentRepository интерфейс журнала встреч
type AppointmentRepository interface {
	Reserve(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	ListByParticipant(ctx context.Context, q domain.ParticipantAppointmentsQuery) ([]*domain.Appointment, error)
	Confirm(ctx context.Context, id uuid.UUID, event domain.ExternalEvent) error
	Cancel(ctx context.Context, id uuid.UUID, reason *string) error
	CompleteEnded(ctx context.Context, now time.Time) (int64, error)
}

// EventDeleter удаляет событие из внешнего календаря владельца
type EventDeleter interface {
	DeleteEvent(ctx context.Context, ownerID int64, eventRef string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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

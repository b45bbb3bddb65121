package availability

import (
	"context"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

// RulesRepository интерфейс хранилища шаблонов доступности
type RulesRepository interface {
	GetRules(ctx context.Context, ownerID int64) ([]domain.AvailabilityRule, error)
	ReplaceRules(ctx context.Context, ownerID int64, rules []domain.AvailabilityRule) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package googlecalendar

import (
	"context"
	"time"
)

// TokenStore хранилище refresh-токенов владельцев календарей
type TokenStore interface {
	// GetRefreshToken возвращает токен владельца, ok=false если календарь не привязан
	GetRefreshToken(ctx context.Context, ownerID int64) (token string, ok bool, err error)
}

// Metrics метрики обращений к провайдеру
type Metrics interface {
	ObserveProviderCall(operation, outcome string, duration time.Duration)
	SetCircuitState(name string, state int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

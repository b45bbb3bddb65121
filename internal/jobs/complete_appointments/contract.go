package complete_appointments

import "context"

// Completer переводит завершившиеся подтверждённые встречи в completed
type Completer interface {
	CompleteEnded(ctx context.Context) (int64, error)
}

// Metrics интерфейс учёта завершённых встреч
type Metrics interface {
	AddCompleted(n int64)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package calendar_connection

import "context"

type ConnectionChecker interface {
	IsConnected(ctx context.Context, ownerID int64) (bool, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

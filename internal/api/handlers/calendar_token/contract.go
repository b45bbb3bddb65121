package calendar_token

import "context"

type TokenStore interface {
	SaveRefreshToken(ctx context.Context, ownerID int64, token string) error
	DeleteRefreshToken(ctx context.Context, ownerID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package calendar_token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MeetingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MeetingService/pkg/psqlbuilder"
)

// Repository хранилище refresh-токенов календарей
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRefreshToken возвращает токен владельца, ok=false если календарь не привязан
func (r *Repository) GetRefreshToken(ctx context.Context, ownerID int64) (string, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("refresh_token").
		From("calendar_tokens").
		Where(squirrel.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("%w: GetRefreshToken - build select query: %v", ErrBuildQuery, err)
	}

	var token string
	err = executor.QueryRowContext(ctx, query, args...).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: GetRefreshToken - scan token: %v", ErrExecQuery, err)
	}

	return token, token != "", nil
}

// SaveRefreshToken сохраняет или заменяет токен владельца
func (r *Repository) SaveRefreshToken(ctx context.Context, ownerID int64, token string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("calendar_tokens").
		Columns("owner_id", "refresh_token").
		Values(ownerID, token).
		Suffix("ON CONFLICT (owner_id) DO UPDATE SET refresh_token = EXCLUDED.refresh_token, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveRefreshToken - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SaveRefreshToken - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// DeleteRefreshToken отвязывает календарь владельца
func (r *Repository) DeleteRefreshToken(ctx context.Context, ownerID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("calendar_tokens").
		Where(squirrel.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteRefreshToken - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteRefreshToken - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}

package availability

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	"github.com/m04kA/SMC-MeetingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MeetingService/pkg/psqlbuilder"
)

// Repository репозиторий недельных правил доступности владельцев
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRules получает все правила владельца
func (r *Repository) GetRules(ctx context.Context, ownerID int64) ([]domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("owner_id", "weekday", "start_minute", "end_minute").
		From("availability_rules").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("weekday ASC", "start_minute ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]domain.AvailabilityRule, 0)
	for rows.Next() {
		var rule domain.AvailabilityRule
		if err := rows.Scan(&rule.OwnerID, &rule.Weekday, &rule.StartMinute, &rule.EndMinute); err != nil {
			return nil, fmt.Errorf("%w: GetRules - scan row: %v", ErrScanRow, err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// ReplaceRules заменяет весь набор правил владельца
// Должен вызываться внутри транзакции: блокировка владельца, удаление и вставка видны атомарно
func (r *Repository) ReplaceRules(ctx context.Context, ownerID int64, rules []domain.AvailabilityRule) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Две параллельные замены одного владельца иначе могут смешать наборы
	if _, err := executor.ExecContext(ctx,
		"SELECT pg_advisory_xact_lock(hashtextextended($1, 0))",
		fmt.Sprintf("availability:%d", ownerID),
	); err != nil {
		return fmt.Errorf("%w: ReplaceRules - lock owner: %v", ErrExecQuery, err)
	}

	query, args, err := psqlbuilder.Delete("availability_rules").
		Where(squirrel.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceRules - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceRules - execute delete: %v", ErrExecQuery, err)
	}

	if len(rules) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert("availability_rules").
		Columns("owner_id", "weekday", "start_minute", "end_minute")
	for _, rule := range rules {
		insert = insert.Values(ownerID, rule.Weekday, rule.StartMinute, rule.EndMinute)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceRules - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceRules - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	"github.com/m04kA/SMC-MeetingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MeetingService/pkg/psqlbuilder"
)

// нарушение EXCLUDE-ограничения appointments_no_overlap
const codeExclusionViolation = "23P01"

var columns = []string{
	"id",
	"owner_id",
	"requester_id",
	"start_time",
	"end_time",
	"title",
	"description",
	"status",
	"external_event_ref",
	"external_event_link",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository журнал встреч
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория встреч
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Reserve атомарно проверяет отсутствие пересечений и создает встречу в статусе scheduled
// Должен вызываться внутри сериализуемой транзакции. Блокировка берётся только на владельца,
// поэтому резервирования разных владельцев не ждут друг друга
func (r *Repository) Reserve(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx,
		"SELECT pg_advisory_xact_lock(hashtextextended($1, 0))",
		fmt.Sprintf("appointments:%d", a.OwnerID),
	); err != nil {
		return nil, fmt.Errorf("%w: Reserve - lock owner: %w", ErrExecQuery, err)
	}

	query, args, err := psqlbuilder.Select("1").
		From("appointments").
		Where(squirrel.Eq{"owner_id": a.OwnerID}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.Lt{"start_time": a.End}).
		Where(squirrel.Gt{"end_time": a.Start}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - build overlap query: %v", ErrBuildQuery, err)
	}

	var exists int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&exists)
	switch {
	case err == nil:
		return nil, ErrSlotTaken
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: Reserve - check overlap: %w", ErrExecQuery, err)
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Status = domain.StatusScheduled

	query, args, err = psqlbuilder.Insert("appointments").
		Columns("id", "owner_id", "requester_id", "start_time", "end_time", "title", "description", "status").
		Values(a.ID, a.OwnerID, a.RequesterID, a.Start, a.End, a.Title, a.Description, a.Status).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeExclusionViolation {
			return nil, ErrSlotTaken
		}
		// serialization failure пробрасывается как есть, txmanager повторит транзакцию
		return nil, fmt.Errorf("%w: Reserve - execute insert: %w", ErrExecQuery, err)
	}

	return a, nil
}

// GetByID получает встречу по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}
	return a, nil
}

// ListByParticipant получает встречи, где пользователь владелец или участник
// Сортировка по времени начала по возрастанию
func (r *Repository) ListByParticipant(ctx context.Context, q domain.ParticipantAppointmentsQuery) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Or{
			squirrel.Eq{"owner_id": q.ParticipantID},
			squirrel.Eq{"requester_id": q.ParticipantID},
		})

	switch q.Filter {
	case domain.FilterUpcoming:
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_time": q.Now})
	case domain.FilterPast:
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": q.Now})
	}

	query, args, err := selectBuilder.OrderBy("start_time ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByParticipant - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByParticipant - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListActiveByOwner получает неотменённые встречи владельца, пересекающие [from, to)
func (r *Repository) ListActiveByOwner(ctx context.Context, ownerID int64, from, to time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.Lt{"start_time": to}).
		Where(squirrel.Gt{"end_time": from}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByOwner - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByOwner - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Confirm привязывает внешнее событие и переводит встречу scheduled -> confirmed
func (r *Repository) Confirm(ctx context.Context, id uuid.UUID, event domain.ExternalEvent) error {
	update := psqlbuilder.Update("appointments").
		Set("status", domain.StatusConfirmed).
		Set("external_event_ref", event.Ref).
		Set("external_event_link", event.Link).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusScheduled})

	return r.transition(ctx, "Confirm", id, update)
}

// Cancel переводит встречу в cancelled из любого нетерминального статуса
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, reason *string) error {
	update := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": []string{string(domain.StatusScheduled), string(domain.StatusConfirmed)},
		})

	return r.transition(ctx, "Cancel", id, update)
}

// CompleteEnded переводит подтверждённые встречи, закончившиеся до now, в completed
func (r *Repository) CompleteEnded(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.LtOrEq{"end_time": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteEnded - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteEnded - execute update: %v", ErrExecQuery, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteEnded - get rows affected: %v", ErrExecQuery, err)
	}
	return n, nil
}

// transition выполняет условный UPDATE и различает «не найдено» и «недопустимый переход»
func (r *Repository) transition(ctx context.Context, op string, id uuid.UUID, update squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a                    domain.Appointment
		description          sql.NullString
		eventRef, eventLink  sql.NullString
		cancellationReason   sql.NullString
		cancelledAt          sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.RequesterID,
		&a.Start,
		&a.End,
		&a.Title,
		&description,
		&a.Status,
		&eventRef,
		&eventLink,
		&cancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Description = nullString(description)
	a.ExternalEventRef = nullString(eventRef)
	a.ExternalEventLink = nullString(eventLink)
	a.CancellationReason = nullString(cancellationReason)
	if cancelledAt.Valid {
		a.CancelledAt = &cancelledAt.Time
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

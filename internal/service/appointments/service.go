package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-MeetingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-MeetingService/internal/service/appointments/models"
)

// Service сервис журнала встреч
type Service struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	events          EventDeleter
	maxDuration     time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса встреч
// events может быть nil, тогда внешние события при отмене не удаляются
func NewService(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	events EventDeleter,
	maxDuration time.Duration,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		events:          events,
		maxDuration:     maxDuration,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Reserve резервирует интервал владельца в статусе scheduled
// Проверка пересечений и вставка выполняются атомарно относительно других резервирований владельца
func (s *Service) Reserve(ctx context.Context, req *models.ReserveRequest) (*domain.Appointment, error) {
	if err := s.validateReserve(req); err != nil {
		s.logger.Warn("Reserve: validation failed for owner=%d: %v", req.OwnerID, err)
		return nil, err
	}

	var created *domain.Appointment
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.appointmentRepo.Reserve(ctx, &domain.Appointment{
			OwnerID:     req.OwnerID,
			RequesterID: req.RequesterID,
			Start:       req.Start,
			End:         req.End,
			Title:       req.Title,
			Description: req.Description,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotTaken) {
			s.logger.Info("Reserve: slot %s-%s of owner=%d is already taken",
				req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339), req.OwnerID)
			return nil, ErrSlotTaken
		}
		s.logger.Error("Reserve: repository error for owner=%d: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: Reserve - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Reserve: appointment id=%s reserved for owner=%d, requester=%d",
		created.ID, created.OwnerID, created.RequesterID)
	return created, nil
}

// Confirm переводит встречу в confirmed и сохраняет ссылку на внешнее событие
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, event domain.ExternalEvent) error {
	if err := s.appointmentRepo.Confirm(ctx, id, event); err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			return ErrAppointmentNotFound
		case errors.Is(err, appointmentRepo.ErrInvalidTransition):
			return fmt.Errorf("%w: appointment is not scheduled", ErrInvalidInput)
		}
		s.logger.Error("Confirm: repository error for appointment id=%s: %v", id, err)
		return fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Confirm: appointment id=%s confirmed, event=%s", id, event.Ref)
	return nil
}

// GetByID получает встречу по ID
// Видеть встречу могут только её участники
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s for user=%d", id, userID)

	appointment, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !appointment.IsParticipant(userID) {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%s", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appointment), nil
}

// List получает встречи, в которых пользователь владелец или инициатор
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: fetching appointments for user=%d, filter=%q", req.UserID, req.Filter)

	filter, ok := models.ToDomainFilter(req.Filter)
	if !ok {
		s.logger.Warn("List: invalid filter=%q for user=%d", req.Filter, req.UserID)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.ListByParticipant(ctx, domain.ParticipantAppointmentsQuery{
		ParticipantID: req.UserID,
		Filter:        filter,
		Now:           s.timeProvider.Now(),
	})
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d appointments for user=%d", len(list), req.UserID)
	return models.FromDomainAppointmentList(list), nil
}

// Cancel отменяет встречу
// Отменить встречу может любой из участников. Внешнее событие удаляется по возможности,
// ошибка календаря не откатывает отмену
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *models.CancelRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%s by user=%d", id, req.UserID)

	if req.CancellationReason != nil && utf8.RuneCountInString(*req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
	}

	appointment, err := s.get(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	if !appointment.IsParticipant(req.UserID) {
		s.logger.Warn("Cancel: access denied for user=%d to appointment id=%s", req.UserID, id)
		return nil, ErrAccessDenied
	}

	if !appointment.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%s cannot be cancelled (status=%s)", id, appointment.Status)
		return nil, ErrCannotCancel
	}

	if err := s.appointmentRepo.Cancel(ctx, id, req.CancellationReason); err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			return nil, ErrAppointmentNotFound
		case errors.Is(err, appointmentRepo.ErrInvalidTransition):
			// статус успел смениться между чтением и обновлением
			return nil, ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if s.events != nil && appointment.ExternalEventRef != nil {
		if err := s.events.DeleteEvent(ctx, appointment.OwnerID, *appointment.ExternalEventRef); err != nil {
			s.logger.Warn("Cancel: failed to delete external event %s of owner=%d: %v",
				*appointment.ExternalEventRef, appointment.OwnerID, err)
		}
	}

	cancelled, err := s.get(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: appointment id=%s cancelled", id)
	return models.FromDomainAppointment(cancelled), nil
}

// CompleteEnded переводит завершившиеся подтверждённые встречи в completed
func (s *Service) CompleteEnded(ctx context.Context) (int64, error) {
	n, err := s.appointmentRepo.CompleteEnded(ctx, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("CompleteEnded: repository error: %v", err)
		return 0, fmt.Errorf("%w: CompleteEnded - repository error: %v", ErrInternal, err)
	}
	return n, nil
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%s not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}

func (s *Service) validateReserve(req *models.ReserveRequest) error {
	if req.OwnerID <= 0 || req.RequesterID <= 0 {
		return fmt.Errorf("%w: ownerID and requesterID must be positive", ErrInvalidInput)
	}
	if !req.Start.Before(req.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidTimeRange)
	}
	if s.maxDuration > 0 && req.End.Sub(req.Start) > s.maxDuration {
		return fmt.Errorf("%w: duration exceeds %s", ErrInvalidTimeRange, s.maxDuration)
	}
	if utf8.RuneCountInString(req.Title) > domain.MaxTitleLength {
		return fmt.Errorf("%w: title is too long", ErrInvalidInput)
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description is too long", ErrInvalidInput)
	}
	return nil
}

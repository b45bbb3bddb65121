package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	"github.com/m04kA/SMC-MeetingService/internal/integrations/googlecalendar"
	"github.com/m04kA/SMC-MeetingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-MeetingService/internal/service/appointments"
	appointmentModels "github.com/m04kA/SMC-MeetingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-MeetingService/internal/service/resolver"
)

// Тексты предупреждений частичного успеха
const (
	warnCalendarUnavailable = "calendar is unavailable, the slot was checked against declared availability only"
	warnEventNotCreated     = "appointment is reserved but the calendar event could not be created"
	warnEventNotLinked      = "calendar event is created but could not be linked to the appointment"
	warnNotConnected        = "owner has no connected calendar, no calendar event was created"
)

// UseCase use case для бронирования встречи
type UseCase struct {
	rulesRepo    RulesRepository
	calendar     CalendarClient
	userClient   UserServiceClient
	ledger       Ledger
	resolver     *resolver.Resolver
	settings     Settings
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	rulesRepo RulesRepository,
	calendar CalendarClient,
	userClient UserServiceClient,
	ledger Ledger,
	slotResolver *resolver.Resolver,
	settings Settings,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		rulesRepo:    rulesRepo,
		calendar:     calendar,
		userClient:   userClient,
		ledger:       ledger,
		resolver:     slotResolver,
		settings:     settings,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case бронирования встречи
// Резерв в журнале не откатывается, если внешний календарь не принял событие
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: owner=%d, requester=%d, range=%s-%s",
		req.OwnerID, req.RequesterID, req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))

	resp, outcome, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.IncBooking(outcome)
	}
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, string, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, OutcomeRejected, err
	}

	now := uc.timeProvider.Now()
	if req.Start.Before(now.Add(uc.settings.MinNotice)) {
		uc.logger.Warn("CreateBooking: start %s is too soon (now=%s, notice=%s)",
			req.Start.Format(time.RFC3339), now.Format(time.RFC3339), uc.settings.MinNotice)
		return nil, OutcomeRejected, ErrTooLateToBook
	}

	// 2. Участники встречи
	if _, err := uc.userClient.GetUserWithGracefulDegradation(ctx, req.OwnerID); err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			uc.logger.Warn("CreateBooking: owner id=%d not found", req.OwnerID)
			return nil, OutcomeRejected, ErrOwnerNotFound
		}
		uc.logger.Warn("CreateBooking: owner id=%d is not verified, UserService degraded: %v", req.OwnerID, err)
	}

	var requesterName, requesterEmail string
	requester, err := uc.userClient.GetUserWithGracefulDegradation(ctx, req.RequesterID)
	switch {
	case err == nil:
		requesterName, requesterEmail = requester.Name, requester.Email
	case errors.Is(err, userservice.ErrUserNotFound):
		uc.logger.Warn("CreateBooking: requester id=%d not found", req.RequesterID)
		return nil, OutcomeRejected, ErrRequesterNotFound
	default:
		uc.logger.Warn("CreateBooking: requester id=%d profile unavailable, booking without attendee: %v", req.RequesterID, err)
	}

	// 3. Привязан ли календарь владельца
	connected, err := uc.calendar.IsConnected(ctx, req.OwnerID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to check calendar connection of owner=%d: %v", req.OwnerID, err)
		return nil, OutcomeError, fmt.Errorf("%w: failed to check calendar connection: %v", ErrInternal, err)
	}
	if !connected && uc.settings.RequireConnectedCalendar {
		uc.logger.Warn("CreateBooking: owner=%d has no connected calendar", req.OwnerID)
		return nil, OutcomeRejected, ErrCalendarNotConnected
	}

	// 4. Повторная проверка интервала по правилам и свежим данным календаря
	warning, outcome, err := uc.revalidate(ctx, req, connected)
	if err != nil {
		return nil, outcome, err
	}

	// 5. Резерв в журнале
	appointment, err := uc.ledger.Reserve(ctx, &appointmentModels.ReserveRequest{
		OwnerID:     req.OwnerID,
		RequesterID: req.RequesterID,
		Start:       req.Start,
		End:         req.End,
		Title:       title(req),
		Description: description(req, requesterName),
	})
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrSlotTaken):
			uc.logger.Info("CreateBooking: slot of owner=%d was taken concurrently", req.OwnerID)
			return nil, OutcomeSlotTaken, ErrSlotTaken
		case errors.Is(err, appointments.ErrInvalidTimeRange), errors.Is(err, appointments.ErrInvalidInput):
			return nil, OutcomeRejected, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Error("CreateBooking: failed to reserve slot for owner=%d: %v", req.OwnerID, err)
		return nil, OutcomeError, fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
	}

	resp := &Response{Appointment: appointment, Warning: warning}

	// 6. Событие во внешнем календаре, ошибка не отменяет резерв
	if !connected {
		resp.Warning = joinWarnings(resp.Warning, warnNotConnected)
		uc.logger.Info("CreateBooking: appointment id=%s reserved without calendar event", appointment.ID)
		return resp, OutcomeScheduled, nil
	}

	in := googlecalendar.EventInput{
		Start:         appointment.Start,
		End:           appointment.End,
		Title:         appointment.Title,
		AttendeeEmail: requesterEmail,
		AttendeeName:  requesterName,
	}
	if appointment.Description != nil {
		in.Description = *appointment.Description
	}

	event, err := uc.calendar.CreateEvent(ctx, req.OwnerID, in)
	if err != nil {
		uc.logger.Warn("CreateBooking: failed to create calendar event for appointment id=%s: %v", appointment.ID, err)
		resp.Warning = joinWarnings(resp.Warning, warnEventNotCreated)
		return resp, OutcomeScheduled, nil
	}
	resp.Event = event

	// 7. Привязываем событие и подтверждаем встречу
	if err := uc.ledger.Confirm(ctx, appointment.ID, *event); err != nil {
		uc.logger.Error("CreateBooking: failed to confirm appointment id=%s with event %s: %v", appointment.ID, event.Ref, err)
		resp.Warning = joinWarnings(resp.Warning, warnEventNotLinked)
		return resp, OutcomeScheduled, nil
	}

	ref, link := event.Ref, event.Link
	appointment.Status = domain.StatusConfirmed
	appointment.ExternalEventRef = &ref
	appointment.ExternalEventLink = &link

	uc.logger.Info("CreateBooking: appointment id=%s confirmed, event=%s", appointment.ID, event.Ref)
	return resp, OutcomeConfirmed, nil
}

// revalidate проверяет, что интервал всё ещё свободен
// Возвращает предупреждение, если календарь недоступен и проверка прошла только по правилам
func (uc *UseCase) revalidate(ctx context.Context, req *Request, connected bool) (string, string, error) {
	rules, err := uc.rulesRepo.GetRules(ctx, req.OwnerID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get rules for owner=%d: %v", req.OwnerID, err)
		return "", OutcomeError, fmt.Errorf("%w: failed to get rules: %v", ErrInternal, err)
	}

	if err := uc.resolver.CheckContainment(req.Start, req.End, rules); err != nil {
		outcome, err := uc.rejectRange(req, err)
		return "", outcome, err
	}

	if !connected {
		return "", "", nil
	}

	from, to := uc.resolver.BusyRange(req.Start, req.End)
	busy, err := uc.calendar.GetBusy(ctx, req.OwnerID, from, to)
	if err != nil {
		switch {
		case googlecalendar.IsRetryable(err):
			uc.logger.Warn("CreateBooking: calendar of owner=%d unavailable, proceeding on rules only: %v", req.OwnerID, err)
			return warnCalendarUnavailable, "", nil
		case errors.Is(err, googlecalendar.ErrNotConnected):
			// токен отозван между проверкой и запросом
			if uc.settings.RequireConnectedCalendar {
				return "", OutcomeRejected, ErrCalendarNotConnected
			}
			return "", "", nil
		case errors.Is(err, googlecalendar.ErrUnauthorized):
			uc.logger.Warn("CreateBooking: calendar of owner=%d rejected credentials: %v", req.OwnerID, err)
			return "", OutcomeProviderError, fmt.Errorf("%w: %v", ErrCalendarUnauthorized, err)
		}
		uc.logger.Error("CreateBooking: failed to get busy intervals for owner=%d: %v", req.OwnerID, err)
		return "", OutcomeProviderError, fmt.Errorf("%w: failed to get busy intervals: %v", ErrInternal, err)
	}

	if err := uc.resolver.Check(req.Start, req.End, rules, busy); err != nil {
		outcome, err := uc.rejectRange(req, err)
		return "", outcome, err
	}

	return "", "", nil
}

// rejectRange переводит ошибку проверки интервала в ошибку use case
func (uc *UseCase) rejectRange(req *Request, err error) (string, error) {
	if errors.Is(err, resolver.ErrInvalidRange) {
		uc.logger.Warn("CreateBooking: invalid range for owner=%d: %v", req.OwnerID, err)
		return OutcomeRejected, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	uc.logger.Info("CreateBooking: range of owner=%d is no longer available: %v", req.OwnerID, err)
	return OutcomeNotAvailable, ErrSlotNoLongerAvailable
}

func joinWarnings(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}

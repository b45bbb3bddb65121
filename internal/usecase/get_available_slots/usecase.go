package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	"github.com/m04kA/SMC-MeetingService/internal/integrations/googlecalendar"
	"github.com/m04kA/SMC-MeetingService/internal/service/resolver"
)

// UseCase use case для получения доступных слотов владельца на день
type UseCase struct {
	rulesRepo       RulesRepository
	appointmentRepo AppointmentRepository
	busySource      BusySource
	resolver        *resolver.Resolver
	settings        Settings
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	rulesRepo RulesRepository,
	appointmentRepo AppointmentRepository,
	busySource BusySource,
	slotResolver *resolver.Resolver,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		rulesRepo:       rulesRepo,
		appointmentRepo: appointmentRepo,
		busySource:      busySource,
		resolver:        slotResolver,
		settings:        settings,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.OwnerID <= 0 {
		return nil, fmt.Errorf("%w: ownerID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	day := uc.resolver.Day(req.Date)
	resp := &Response{Date: day, OwnerID: req.OwnerID, Slots: []domain.Slot{}}

	uc.logger.Info("GetAvailableSlots: owner=%d, date=%s", req.OwnerID, day.Format(domain.DateFormat))

	// 1. Прошедший день или уже закрытое окно: внешние источники не опрашиваются
	now := uc.timeProvider.Now()
	if day.Before(uc.resolver.Day(now)) {
		uc.logger.Info("GetAvailableSlots: date %s is in the past", day.Format(domain.DateFormat))
		return resp, nil
	}

	windowStart, windowEnd := uc.resolver.Window(day)
	notBefore := now.Add(uc.settings.MinNotice)
	if !notBefore.Before(windowEnd) {
		uc.logger.Info("GetAvailableSlots: booking window of %s is already closed", day.Format(domain.DateFormat))
		return resp, nil
	}

	// 2. Правила дня недели
	rules, err := uc.rulesRepo.GetRules(ctx, req.OwnerID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get rules for owner=%d: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: failed to get rules: %v", ErrInternal, err)
	}
	if len(uc.resolver.RulesForDay(day, rules)) == 0 {
		uc.logger.Info("GetAvailableSlots: owner=%d has no availability on %s", req.OwnerID, day.Weekday())
		return resp, nil
	}

	// 3. Свежие занятые интервалы из внешнего календаря
	busy, err := uc.busySource.GetBusy(ctx, req.OwnerID, windowStart, windowEnd)
	if err != nil {
		if errors.Is(err, googlecalendar.ErrNotConnected) && !uc.settings.RequireConnectedCalendar {
			uc.logger.Info("GetAvailableSlots: owner=%d has no connected calendar, using rules only", req.OwnerID)
			busy = nil
		} else {
			uc.logger.Warn("GetAvailableSlots: failed to get busy intervals for owner=%d: %v", req.OwnerID, err)
			return nil, providerError(err)
		}
	}

	// 4. Встречи журнала тоже занимают время, даже если их нет во внешнем календаре
	appointments, err := uc.appointmentRepo.ListActiveByOwner(ctx, req.OwnerID, windowStart, windowEnd)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments for owner=%d: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}
	for _, a := range appointments {
		busy = append(busy, domain.BusyInterval{Start: a.Start, End: a.End})
	}

	// 5. Вычисляем слоты и отбрасываем те, что начинаются слишком скоро
	for _, slot := range uc.resolver.Resolve(day, rules, busy) {
		if slot.Start.Before(notBefore) {
			continue
		}
		resp.Slots = append(resp.Slots, slot)
	}

	uc.logger.Info("GetAvailableSlots: resolved %d slots for owner=%d, date=%s",
		len(resp.Slots), req.OwnerID, day.Format(domain.DateFormat))

	return resp, nil
}

// providerError переводит ошибку календаря в ошибку use case
func providerError(err error) error {
	switch {
	case googlecalendar.IsRetryable(err):
		return fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
	case errors.Is(err, googlecalendar.ErrNotConnected):
		return ErrCalendarNotConnected
	case errors.Is(err, googlecalendar.ErrUnauthorized):
		return fmt.Errorf("%w: %v", ErrCalendarUnauthorized, err)
	default:
		return fmt.Errorf("%w: get busy intervals: %v", ErrInternal, err)
	}
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-MeetingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-MeetingService/pkg/keylock"
)

// Store хранилище в памяти с теми же контрактами, что и PostgreSQL-репозитории
// Резервирование и замена правил сериализуются по владельцу, а не глобально
type Store struct {
	mu           sync.RWMutex
	rules        map[int64][]domain.AvailabilityRule
	appointments map[uuid.UUID]*domain.Appointment
	byOwner      map[int64][]uuid.UUID
	tokens       map[int64]string

	owners *keylock.KeyLock[int64]
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		rules:        make(map[int64][]domain.AvailabilityRule),
		appointments: make(map[uuid.UUID]*domain.Appointment),
		byOwner:      make(map[int64][]uuid.UUID),
		tokens:       make(map[int64]string),
		owners:       keylock.New[int64](),
		now:          time.Now,
	}
}

// GetRules получает правила владельца
func (s *Store) GetRules(_ context.Context, ownerID int64) ([]domain.AvailabilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]domain.AvailabilityRule, len(s.rules[ownerID]))
	copy(rules, s.rules[ownerID])
	return rules, nil
}

// ReplaceRules подменяет набор правил владельца целиком
func (s *Store) ReplaceRules(_ context.Context, ownerID int64, rules []domain.AvailabilityRule) error {
	next := make([]domain.AvailabilityRule, 0, len(rules))
	for _, rule := range rules {
		rule.OwnerID = ownerID
		next = append(next, rule)
	}
	sort.Slice(next, func(i, j int) bool {
		if next[i].Weekday != next[j].Weekday {
			return next[i].Weekday < next[j].Weekday
		}
		return next[i].StartMinute < next[j].StartMinute
	})

	unlock := s.owners.Lock(ownerID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(next) == 0 {
		delete(s.rules, ownerID)
		return nil
	}
	s.rules[ownerID] = next
	return nil
}

// Reserve атомарно относительно других резервирований того же владельца
func (s *Store) Reserve(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	unlock := s.owners.Lock(a.OwnerID)
	defer unlock()

	// Проверка и вставка под разными блокировками mu корректны, пока активные встречи владельца
	// добавляются только здесь под s.owners; остальные записи лишь отменяют или завершают встречи
	s.mu.RLock()
	for _, id := range s.byOwner[a.OwnerID] {
		existing := s.appointments[id]
		if existing.IsActive() && existing.Overlaps(a.Start, a.End) {
			s.mu.RUnlock()
			return nil, appointmentRepo.ErrSlotTaken
		}
	}
	s.mu.RUnlock()

	created := *a
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	created.Status = domain.StatusScheduled
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt

	s.mu.Lock()
	s.appointments[created.ID] = &created
	s.byOwner[created.OwnerID] = append(s.byOwner[created.OwnerID], created.ID)
	s.mu.Unlock()

	return clone(&created), nil
}

// GetByID получает встречу по ID
func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return clone(a), nil
}

// ListByParticipant получает встречи владельца или участника по возрастанию начала
func (s *Store) ListByParticipant(_ context.Context, q domain.ParticipantAppointmentsQuery) ([]*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, a := range s.appointments {
		if !a.IsParticipant(q.ParticipantID) {
			continue
		}
		switch q.Filter {
		case domain.FilterUpcoming:
			if a.Start.Before(q.Now) {
				continue
			}
		case domain.FilterPast:
			if !a.Start.Before(q.Now) {
				continue
			}
		}
		result = append(result, clone(a))
	}

	sortByStart(result)
	return result, nil
}

// ListActiveByOwner получает неотменённые встречи владельца, пересекающие [from, to)
func (s *Store) ListActiveByOwner(_ context.Context, ownerID int64, from, to time.Time) ([]*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, id := range s.byOwner[ownerID] {
		a := s.appointments[id]
		if a.IsActive() && a.Overlaps(from, to) {
			result = append(result, clone(a))
		}
	}

	sortByStart(result)
	return result, nil
}

// Confirm переводит scheduled -> confirmed с привязкой внешнего события
func (s *Store) Confirm(_ context.Context, id uuid.UUID, event domain.ExternalEvent) error {
	return s.transition(id, domain.StatusConfirmed, func(a *domain.Appointment) {
		ref, link := event.Ref, event.Link
		a.ExternalEventRef = &ref
		a.ExternalEventLink = &link
	})
}

// Cancel переводит встречу в cancelled
func (s *Store) Cancel(_ context.Context, id uuid.UUID, reason *string) error {
	return s.transition(id, domain.StatusCancelled, func(a *domain.Appointment) {
		now := s.now()
		a.CancellationReason = reason
		a.CancelledAt = &now
	})
}

// CompleteEnded переводит закончившиеся подтверждённые встречи в completed
func (s *Store) CompleteEnded(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, a := range s.appointments {
		if a.Status == domain.StatusConfirmed && !a.End.After(now) {
			a.Status = domain.StatusCompleted
			a.UpdatedAt = s.now()
			n++
		}
	}
	return n, nil
}

func (s *Store) transition(id uuid.UUID, to domain.AppointmentStatus, apply func(a *domain.Appointment)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if !a.Status.CanTransitionTo(to) {
		return appointmentRepo.ErrInvalidTransition
	}

	a.Status = to
	a.UpdatedAt = s.now()
	apply(a)
	return nil
}

// GetRefreshToken возвращает токен владельца
func (s *Store) GetRefreshToken(_ context.Context, ownerID int64) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[ownerID]
	return token, ok && token != "", nil
}

// SaveRefreshToken сохраняет токен владельца
func (s *Store) SaveRefreshToken(_ context.Context, ownerID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[ownerID] = token
	return nil
}

// DeleteRefreshToken удаляет токен владельца
func (s *Store) DeleteRefreshToken(_ context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, ownerID)
	return nil
}

func clone(a *domain.Appointment) *domain.Appointment {
	c := *a
	return &c
}

func sortByStart(list []*domain.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Start.Equal(list[j].Start) {
			return list[i].Start.Before(list[j].Start)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
}

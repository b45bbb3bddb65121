package resolver

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

// Settings параметры ежедневного окна бронирования
type Settings struct {
	Location        *time.Location
	WindowStartHour int
	WindowEndHour   int
	SlotMinutes     int
}

// Resolver вычисляет свободные слоты из правил доступности и занятых интервалов
// Не хранит состояния и не обращается к внешним источникам
type Resolver struct {
	loc         *time.Location
	startHour   int
	endHour     int
	granularity time.Duration
}

func New(s Settings) *Resolver {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	slot := s.SlotMinutes
	if slot <= 0 {
		slot = domain.DefaultSlotMinutes
	}
	return &Resolver{
		loc:         loc,
		startHour:   s.WindowStartHour,
		endHour:     s.WindowEndHour,
		granularity: time.Duration(slot) * time.Minute,
	}
}

// Location часовой пояс расписания
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Day возвращает полночь календарного дня t в часовом поясе расписания
func (r *Resolver) Day(t time.Time) time.Time {
	y, m, d := t.In(r.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc)
}

// Window возвращает окно бронирования [start, end) для дня
func (r *Resolver) Window(day time.Time) (time.Time, time.Time) {
	y, m, d := day.In(r.loc).Date()
	return time.Date(y, m, d, r.startHour, 0, 0, 0, r.loc),
		time.Date(y, m, d, r.endHour, 0, 0, 0, r.loc)
}

// RulesForDay оставляет правила, относящиеся к дню недели day
func (r *Resolver) RulesForDay(day time.Time, rules []domain.AvailabilityRule) []domain.AvailabilityRule {
	weekday := int(day.In(r.loc).Weekday())

	matched := make([]domain.AvailabilityRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Weekday == weekday {
			matched = append(matched, rule)
		}
	}
	return matched
}

// Resolve возвращает упорядоченные свободные слоты дня
// Слот остаётся, если он целиком внутри хотя бы одного правила его дня недели
// и не пересекается ни с одним занятым интервалом
func (r *Resolver) Resolve(day time.Time, rules []domain.AvailabilityRule, busy []domain.BusyInterval) []domain.Slot {
	dayRules := r.RulesForDay(day, rules)
	if len(dayRules) == 0 {
		return []domain.Slot{}
	}

	merged := MergeBusy(busy)
	slots := make([]domain.Slot, 0)
	for _, candidate := range r.Candidates(day) {
		startMinute, endMinute := r.minutes(candidate.Start, candidate.End)
		if !contained(dayRules, startMinute, endMinute) {
			continue
		}
		if overlapsAny(merged, candidate.Start, candidate.End) {
			continue
		}
		slots = append(slots, candidate)
	}
	return slots
}

// Candidates все выровненные по сетке слоты внутри окна дня
func (r *Resolver) Candidates(day time.Time) []domain.Slot {
	windowStart, windowEnd := r.Window(day)

	slots := make([]domain.Slot, 0)
	for start := windowStart; !start.Add(r.granularity).After(windowEnd); start = start.Add(r.granularity) {
		slots = append(slots, domain.Slot{Start: start, End: start.Add(r.granularity)})
	}
	return slots
}

// Check повторяет проверки Resolve для произвольного интервала [start, end)
func (r *Resolver) Check(start, end time.Time, rules []domain.AvailabilityRule, busy []domain.BusyInterval) error {
	if err := r.CheckContainment(start, end, rules); err != nil {
		return err
	}
	if overlapsAny(MergeBusy(busy), start, end) {
		return ErrBusy
	}
	return nil
}

// CheckContainment проверяет, что интервал мог быть предложен как слот: один день, окно, сетка, правила
// Занятость не учитывается
func (r *Resolver) CheckContainment(start, end time.Time, rules []domain.AvailabilityRule) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidRange)
	}
	if !r.Day(start).Equal(r.Day(end.Add(-time.Nanosecond))) {
		return fmt.Errorf("%w: range must fit in one day", ErrInvalidRange)
	}
	if err := r.checkGrid(start, end); err != nil {
		return err
	}

	startMinute, endMinute := r.minutes(start, end)
	if !contained(r.RulesForDay(start, rules), startMinute, endMinute) {
		return ErrOutsideAvailability
	}
	return nil
}

// checkGrid требует, чтобы интервал лежал в окне дня и его границы совпадали с границами слотов
func (r *Resolver) checkGrid(start, end time.Time) error {
	windowStart, windowEnd := r.Window(r.Day(start))
	if start.Before(windowStart) || end.After(windowEnd) {
		return fmt.Errorf("%w: range must lie within %s-%s", ErrInvalidRange,
			windowStart.Format("15:04"), windowEnd.Format("15:04"))
	}
	if start.Sub(windowStart)%r.granularity != 0 || end.Sub(windowStart)%r.granularity != 0 {
		return fmt.Errorf("%w: range must be aligned to %s slots", ErrInvalidRange, r.granularity)
	}
	return nil
}

// BusyRange интервал, за который нужно запросить занятость, чтобы проверить [start, end)
// Покрывает и окно дня, и сам интервал
func (r *Resolver) BusyRange(start, end time.Time) (time.Time, time.Time) {
	from, to := r.Window(r.Day(start))
	if start.Before(from) {
		from = start
	}
	if end.After(to) {
		to = end
	}
	return from, to
}

// minutes переводит интервал в минуты от полуночи его дня
func (r *Resolver) minutes(start, end time.Time) (int, int) {
	local := start.In(r.loc)
	startMinute := local.Hour()*60 + local.Minute()
	return startMinute, startMinute + int(end.Sub(start)/time.Minute)
}

// MergeBusy сортирует интервалы и склеивает пересекающиеся и соприкасающиеся
func MergeBusy(busy []domain.BusyInterval) []domain.BusyInterval {
	if len(busy) == 0 {
		return nil
	}

	sorted := make([]domain.BusyInterval, 0, len(busy))
	for _, b := range busy {
		if b.Start.Before(b.End) {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]domain.BusyInterval, 0, len(sorted))
	for _, b := range sorted {
		last := len(merged) - 1
		if last >= 0 && !b.Start.After(merged[last].End) {
			if b.End.After(merged[last].End) {
				merged[last].End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

func contained(rules []domain.AvailabilityRule, startMinute, endMinute int) bool {
	for _, rule := range rules {
		if rule.Contains(startMinute, endMinute) {
			return true
		}
	}
	return false
}

// overlapsAny ожидает отсортированные непересекающиеся интервалы
func overlapsAny(merged []domain.BusyInterval, start, end time.Time) bool {
	i := sort.Search(len(merged), func(i int) bool {
		return merged[i].End.After(start)
	})
	return i < len(merged) && domain.Overlaps(start, end, merged[i].Start, merged[i].End)
}

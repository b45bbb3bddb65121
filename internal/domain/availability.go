package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWeekday   = errors.New("domain: weekday must be in range 0..6")
	ErrInvalidRuleRange = errors.New("domain: rule start must be before end within a day")
)

// AvailabilityRule represents a recurring weekly free-time range of an owner
// Minutes are counted from midnight in the reference time zone
type AvailabilityRule struct {
	OwnerID     int64
	Weekday     int // 0 = Sunday
	StartMinute int
	EndMinute   int
}

// Validate checks bounds and ordering of the rule
func (r AvailabilityRule) Validate() error {
	if r.Weekday < 0 || r.Weekday > 6 {
		return fmt.Errorf("%w: got %d", ErrInvalidWeekday, r.Weekday)
	}
	if r.StartMinute < 0 || r.StartMinute > MinutesPerDay-1 ||
		r.EndMinute < 1 || r.EndMinute > MinutesPerDay ||
		r.StartMinute >= r.EndMinute {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidRuleRange, r.StartMinute, r.EndMinute)
	}
	return nil
}

// Contains returns true if [startMinute, endMinute) lies fully inside the rule
func (r AvailabilityRule) Contains(startMinute, endMinute int) bool {
	return r.StartMinute <= startMinute && r.EndMinute >= endMinute
}

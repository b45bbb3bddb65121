package domain

import "time"

// Slot represents a bookable fixed-length time range. Never persisted
type Slot struct {
	Start time.Time
	End   time.Time
}

// BusyInterval represents a range reported busy by the external calendar
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps returns true if two half-open ranges intersect
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

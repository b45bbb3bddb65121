package domain

// Default configuration values
const (
	DefaultSlotMinutes           = 30
	DefaultWindowStartHour       = 9
	DefaultWindowEndHour         = 17
	DefaultMaxRules              = 100
	DefaultMaxAppointmentMinutes = 480
	DefaultTitle                 = "Scheduled Meeting"
)

// Business validation constants
const (
	MinutesPerDay               = 24 * 60
	MaxTitleLength              = 200
	MaxDescriptionLength        = 2000
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

package googlecalendar

import "time"

// Config настройки клиента Google Calendar
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	BaseURL      string
	CalendarID   string
	Timeout      time.Duration
	Location     *time.Location

	RequestsPerSecond float64
	Burst             int

	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration

	EmailReminderMinutes int
	PopupReminderMinutes int
}

// EventInput данные события в календаре владельца
type EventInput struct {
	Start         time.Time
	End           time.Time
	Title         string
	Description   string
	AttendeeEmail string
	AttendeeName  string
}

type freeBusyRequest struct {
	TimeMin  string         `json:"timeMin"`
	TimeMax  string         `json:"timeMax"`
	TimeZone string         `json:"timeZone,omitempty"`
	Items    []freeBusyItem `json:"items"`
}

type freeBusyItem struct {
	ID string `json:"id"`
}

type freeBusyResponse struct {
	Calendars map[string]freeBusyCalendar `json:"calendars"`
}

type freeBusyCalendar struct {
	Busy []struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"busy"`
	Errors []struct {
		Domain string `json:"domain"`
		Reason string `json:"reason"`
	} `json:"errors,omitempty"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventAttendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

type reminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type conferenceData struct {
	CreateRequest conferenceRequest `json:"createRequest"`
}

type conferenceRequest struct {
	RequestID             string `json:"requestId"`
	ConferenceSolutionKey struct {
		Type string `json:"type"`
	} `json:"conferenceSolutionKey"`
}

type eventReminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []reminderOverride `json:"overrides,omitempty"`
}

type googleEvent struct {
	Summary        string          `json:"summary"`
	Description    string          `json:"description,omitempty"`
	Start          eventTime       `json:"start"`
	End            eventTime       `json:"end"`
	Attendees      []eventAttendee `json:"attendees,omitempty"`
	ConferenceData *conferenceData `json:"conferenceData,omitempty"`
	Reminders      eventReminders  `json:"reminders"`
}

type createdEvent struct {
	ID          string `json:"id"`
	HTMLLink    string `json:"htmlLink"`
	HangoutLink string `json:"hangoutLink"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

package get_available_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrCalendarUnavailable возвращается, когда внешний календарь временно недоступен (можно повторить)
	ErrCalendarUnavailable = errors.New("external calendar temporarily unavailable")

	// ErrCalendarUnauthorized возвращается, когда провайдер отклонил доступ к календарю владельца
	ErrCalendarUnauthorized = errors.New("external calendar access denied")

	// ErrCalendarNotConnected возвращается, когда у владельца нет привязанного календаря
	ErrCalendarNotConnected = errors.New("owner calendar is not connected")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)

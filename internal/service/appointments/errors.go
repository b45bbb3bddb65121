package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда встреча не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAccessDenied возвращается, когда пользователь не участник встречи
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel возвращается, когда встреча уже отменена или завершена
	ErrCannotCancel = errors.New("appointment cannot be cancelled")

	// ErrSlotTaken возвращается, когда интервал пересекается с другой активной встречей владельца
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

package create_booking

import "errors"

var (
	// ErrOwnerNotFound возвращается, когда владелец не найден в UserService
	ErrOwnerNotFound = errors.New("create_booking: owner not found")

	// ErrRequesterNotFound возвращается, когда инициатор не найден в UserService
	ErrRequesterNotFound = errors.New("create_booking: requester not found")

	// ErrCalendarNotConnected возвращается, когда у владельца нет привязанного календаря, а он обязателен
	ErrCalendarNotConnected = errors.New("create_booking: owner calendar is not connected")

	// ErrCalendarUnauthorized возвращается, когда календарь отклонил учётные данные владельца
	ErrCalendarUnauthorized = errors.New("create_booking: calendar rejected owner credentials")

	// ErrSlotNoLongerAvailable возвращается, когда интервал перестал быть свободным после показа слотов
	ErrSlotNoLongerAvailable = errors.New("create_booking: slot is no longer available")

	// ErrSlotTaken возвращается, когда интервал заняла параллельная запись
	ErrSlotTaken = errors.New("create_booking: slot is already taken")

	// ErrTooLateToBook возвращается, когда до начала встречи осталось меньше минимального времени
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

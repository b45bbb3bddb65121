package availability

import "errors"

var (
	// ErrInvalidRules возвращается, когда набор правил не проходит валидацию
	ErrInvalidRules = errors.New("invalid availability rules")

	// ErrTooManyRules возвращается при превышении лимита правил на владельца
	ErrTooManyRules = errors.New("too many availability rules")

	// ErrAccessDenied возвращается, когда правила меняет не сам владелец
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

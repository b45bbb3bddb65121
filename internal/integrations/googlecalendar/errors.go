package googlecalendar

import "errors"

var (
	// ErrUnauthorized возвращается, когда провайдер отклонил токен владельца (401/403, invalid_grant)
	ErrUnauthorized = errors.New("googlecalendar: unauthorized")

	// ErrUnreachable возвращается при сетевых ошибках, таймаутах, 5xx и разомкнутом circuit breaker
	ErrUnreachable = errors.New("googlecalendar: provider unreachable")

	// ErrRateLimited возвращается при превышении квоты провайдера или локального лимита запросов
	ErrRateLimited = errors.New("googlecalendar: rate limited")

	// ErrNotConnected возвращается, когда у владельца нет привязанного календаря
	ErrNotConnected = errors.New("googlecalendar: calendar not connected")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("googlecalendar: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("googlecalendar: internal error")
)

// IsRetryable сообщает, что ошибку провайдера имеет смысл повторить позже
// Unauthorized и NotConnected требуют действий владельца и не повторяются
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrRateLimited)
}

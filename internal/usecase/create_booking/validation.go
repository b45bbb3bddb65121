package create_booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.OwnerID <= 0 {
		return fmt.Errorf("%w: ownerID must be positive", ErrInvalidInput)
	}

	if req.RequesterID <= 0 {
		return fmt.Errorf("%w: requesterID must be positive", ErrInvalidInput)
	}

	if req.OwnerID == req.RequesterID {
		return fmt.Errorf("%w: cannot book a meeting with yourself", ErrInvalidInput)
	}

	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}

	if !req.Start.Before(req.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidInput)
	}

	if req.Title != nil && utf8.RuneCountInString(*req.Title) > domain.MaxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, domain.MaxTitleLength)
	}

	if req.Description != nil && utf8.RuneCountInString(*req.Description) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", ErrInvalidInput, domain.MaxDescriptionLength)
	}

	return nil
}

// title возвращает заголовок встречи или заголовок по умолчанию
func title(req *Request) string {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return domain.DefaultTitle
	}
	return strings.TrimSpace(*req.Title)
}

// description возвращает описание встречи, по умолчанию с именем инициатора
func description(req *Request, requesterName string) *string {
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		d := strings.TrimSpace(*req.Description)
		return &d
	}
	if requesterName == "" {
		return nil
	}
	d := "Meeting with " + requesterName
	return &d
}

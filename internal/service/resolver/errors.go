package resolver

import "errors"

var (
	// ErrInvalidRange возвращается, когда интервал пустой, выходит за пределы суток или окна,
	// либо не совпадает с сеткой слотов
	ErrInvalidRange = errors.New("resolver: invalid time range")

	// ErrOutsideAvailability возвращается, когда интервал не лежит целиком ни в одном правиле
	ErrOutsideAvailability = errors.New("resolver: range is outside declared availability")

	// ErrBusy возвращается, когда интервал пересекается с занятым временем
	ErrBusy = errors.New("resolver: range overlaps busy time")
)

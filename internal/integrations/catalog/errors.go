package catalog

import "errors"

var (
	// ErrBarberNotFound возвращается, когда мастер отсутствует в справочнике
	ErrBarberNotFound = errors.New("catalog: barber not found")

	// ErrServiceNotFound возвращается, когда услуга отсутствует в справочнике
	ErrServiceNotFound = errors.New("catalog: service not found")

	// ErrUnavailable возвращается, когда справочник недоступен (сеть, таймаут, 5xx)
	ErrUnavailable = errors.New("catalog: directory unavailable")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalog client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от справочника
	ErrInvalidResponse = errors.New("catalog client: invalid response")
)

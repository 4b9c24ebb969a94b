package get_availability

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

var (
	// ErrBarberNotFound возвращается, когда мастер не найден или неактивен
	ErrBarberNotFound = fmt.Errorf("%w: barber", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = fmt.Errorf("%w: service", domain.ErrNotFound)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrCatalogUnavailable возвращается, когда справочник мастеров и услуг недоступен
	ErrCatalogUnavailable = fmt.Errorf("%w: catalog", domain.ErrUnavailable)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)

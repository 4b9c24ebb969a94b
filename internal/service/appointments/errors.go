package appointments

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment", domain.ErrNotFound)

	// ErrInvalidTransition возвращается, когда смена статуса не разрешена жизненным циклом
	// или статус записи изменился конкурентно
	ErrInvalidTransition = fmt.Errorf("%w: appointment", domain.ErrInvalidTransition)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("appointments service: internal error")
)

// Значения метки result метрики смены статуса
const (
	transitionApplied  = "applied"
	transitionRejected = "rejected"
	transitionFailed   = "failed"
)

package create_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInactiveOrUnknownService возвращается, когда услуга не найдена или неактивна
	ErrInactiveOrUnknownService = fmt.Errorf("%w: service is unknown or inactive", domain.ErrValidation)

	// ErrOutsideWorkingHours возвращается, когда время не попадает в сетку рабочего окна мастера
	ErrOutsideWorkingHours = fmt.Errorf("%w: start time is outside barber working hours", domain.ErrValidation)

	// ErrPastTime возвращается, когда время начала не позже текущего момента
	ErrPastTime = fmt.Errorf("%w: start time is in the past", domain.ErrValidation)

	// ErrSlotTaken возвращается, когда интервал пересекается с активной записью мастера
	ErrSlotTaken = fmt.Errorf("%w: slot already taken", domain.ErrConflict)

	// ErrArbitrationBusy возвращается, когда не удалось дождаться очереди на запись к мастеру
	ErrArbitrationBusy = fmt.Errorf("%w: barber agenda is busy, retry later", domain.ErrUnavailable)

	// ErrCatalogUnavailable возвращается, когда справочник мастеров и услуг недоступен
	ErrCatalogUnavailable = fmt.Errorf("%w: catalog", domain.ErrUnavailable)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)

// Значения метки outcome метрики попыток записи
const (
	outcomeCreated      = "created"
	outcomeInvalid      = "invalid_input"
	outcomeInactive     = "inactive_or_unknown_service"
	outcomeOutsideHours = "outside_working_hours"
	outcomePastTime     = "past_time"
	outcomeSlotTaken    = "slot_taken"
	outcomeBusy         = "arbitration_busy"
	outcomeInternal     = "internal_error"
)

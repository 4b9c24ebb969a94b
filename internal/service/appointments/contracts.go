package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetWithFilter(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateStatus(
		ctx context.Context,
		id int64,
		from domain.AppointmentStatus,
		to domain.AppointmentStatus,
		at time.Time,
	) (*domain.Appointment, error)
}

// MetricsRecorder интерфейс для метрик смены статуса
type MetricsRecorder interface {
	ObserveTransition(status, result string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

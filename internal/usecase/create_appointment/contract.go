package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetWithFilter(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
}

// Catalog интерфейс справочника мастеров и услуг
type Catalog interface {
	GetBarber(ctx context.Context, barberID int64) (*domain.Barber, error)
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker блокировка "один писатель на мастера"
type Locker interface {
	Acquire(ctx context.Context, barberID int64) (release func(), err error)
}

// MetricsRecorder интерфейс для метрик бронирования
type MetricsRecorder interface {
	ObserveBooking(outcome string)
	ObserveArbitrationWait(d time.Duration)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

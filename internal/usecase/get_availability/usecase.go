package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	"github.com/m04kA/SMC-BarberScheduling/internal/integrations/catalog"
	"github.com/m04kA/SMC-BarberScheduling/internal/scheduling"
	"github.com/m04kA/SMC-BarberScheduling/pkg/ptr"
)

// UseCase use case для расчёта доступных слотов мастера на дату
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalog         Catalog
	timeProvider    TimeProvider
	location        *time.Location
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalog Catalog,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalog:         catalog,
		timeProvider:    timeProvider,
		location:        location,
		logger:          logger,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: barber=%d, service=%d, date=%s",
		req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// Дата трактуется в часовом поясе барбершопа
	y, m, d := req.Date.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, uc.location)

	// 2. Получаем услугу
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, uc.catalogError(err)
	}
	if !service.IsBookable() {
		uc.logger.Warn("GetAvailability: service id=%d is not bookable", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 3. Получаем мастера
	barber, err := uc.catalog.GetBarber(ctx, req.BarberID)
	if err != nil {
		if errors.Is(err, catalog.ErrBarberNotFound) {
			uc.logger.Warn("GetAvailability: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("GetAvailability: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, uc.catalogError(err)
	}
	if !barber.Active {
		uc.logger.Warn("GetAvailability: barber id=%d is inactive", req.BarberID)
		return nil, ErrBarberNotFound
	}

	response := &Response{
		Date:      date,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		Slots:     []domain.Slot{},
	}

	// 4. Рабочее окно мастера
	window, err := scheduling.ResolveWindow(barber, date)
	if err != nil {
		if errors.Is(err, scheduling.ErrNoWorkingHours) {
			uc.logger.Info("GetAvailability: barber id=%d has no working hours", req.BarberID)
			return response, nil
		}
		uc.logger.Error("GetAvailability: barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: resolve window: %v", ErrInternal, err)
	}

	// 5. Записи мастера за день
	dayStart, dayEnd := scheduling.DayBounds(date)
	appointments, err := uc.appointmentRepo.GetWithFilter(ctx, domain.AppointmentFilter{
		BarberID: ptr.Ptr(req.BarberID),
		From:     &dayStart,
		To:       &dayEnd,
		Statuses: domain.OccupyingStatuses,
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 6. Разметка слотов
	occupancy := scheduling.BuildOccupancy(req.BarberID, date, appointments)
	response.Slots = scheduling.ComputeAvailability(window, service.DurationMinutes, occupancy, uc.timeProvider.Now())

	uc.logger.Info("GetAvailability: generated %d slots for barber=%d, service=%d, date=%s",
		len(response.Slots), req.BarberID, req.ServiceID, date.Format(domain.DateFormat))

	return response, nil
}

func (uc *UseCase) catalogError(err error) error {
	if errors.Is(err, catalog.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return fmt.Errorf("%w: catalog: %v", ErrInternal, err)
}

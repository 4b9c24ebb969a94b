package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-BarberScheduling/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-BarberScheduling/internal/integrations/catalog"
	"github.com/m04kA/SMC-BarberScheduling/internal/scheduling"
	"github.com/m04kA/SMC-BarberScheduling/pkg/ptr"
	"github.com/m04kA/SMC-BarberScheduling/pkg/txmanager"
)

// DefaultArbitrationTimeout максимальное ожидание очереди на запись к мастеру
const DefaultArbitrationTimeout = 3 * time.Second

// UseCase use case создания записи (арбитраж конкурирующих бронирований)
//
// Проверка пересечения и вставка выполняются под блокировкой мастера и внутри
// сериализуемой транзакции; хранилище дополнительно отклоняет пересечения само.
type UseCase struct {
	appointmentRepo    AppointmentRepository
	catalog            Catalog
	txManager          TxManager
	locker             Locker
	metrics            MetricsRecorder
	timeProvider       TimeProvider
	location           *time.Location
	arbitrationTimeout time.Duration
	logger             Logger
}

// Config параметры арбитража
type Config struct {
	Location           *time.Location
	ArbitrationTimeout time.Duration
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalog Catalog,
	txManager TxManager,
	locker Locker,
	metrics MetricsRecorder,
	timeProvider TimeProvider,
	cfg Config,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ArbitrationTimeout <= 0 {
		cfg.ArbitrationTimeout = DefaultArbitrationTimeout
	}
	return &UseCase{
		appointmentRepo:    appointmentRepo,
		catalog:            catalog,
		txManager:          txManager,
		locker:             locker,
		metrics:            metrics,
		timeProvider:       timeProvider,
		location:           cfg.Location,
		arbitrationTimeout: cfg.ArbitrationTimeout,
		logger:             logger,
	}
}

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: barber=%d, service=%d, client=%d, start=%s",
		req.BarberID, req.ServiceID, req.ClientID, req.StartTime.Format(time.RFC3339))

	appt, outcome, err := uc.execute(ctx, req)
	uc.observeBooking(outcome)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateAppointment: created appointment id=%d for barber=%d at %s",
		appt.ID, appt.BarberID, appt.StartTime.Format(time.RFC3339))

	return newResponse(appt), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Appointment, string, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, outcomeInvalid, err
	}

	startTime := req.StartTime.In(uc.location)

	// 2. Услуга должна существовать и быть активной
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, outcomeInactive, ErrInactiveOrUnknownService
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, outcomeInternal, uc.catalogError(err)
	}
	if !service.IsBookable() {
		uc.logger.Warn("CreateAppointment: service id=%d is not bookable", req.ServiceID)
		return nil, outcomeInactive, ErrInactiveOrUnknownService
	}

	// 3. Время должно попадать в сетку рабочего окна мастера
	window, outcome, err := uc.resolveWindow(ctx, req.BarberID, startTime)
	if err != nil {
		return nil, outcome, err
	}
	if !scheduling.IsOnGrid(window, service.DurationMinutes, startTime) {
		uc.logger.Warn("CreateAppointment: start=%s is not on the %d-minute grid of barber=%d (%s-%s)",
			startTime.Format(time.RFC3339), service.DurationMinutes, req.BarberID,
			window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
		return nil, outcomeOutsideHours, ErrOutsideWorkingHours
	}

	// 4. Время должно быть строго в будущем
	if !startTime.After(uc.timeProvider.Now()) {
		uc.logger.Warn("CreateAppointment: start=%s is in the past", startTime.Format(time.RFC3339))
		return nil, outcomePastTime, ErrPastTime
	}

	// 5. Очередь на запись к мастеру, ожидание ограничено
	release, err := uc.acquire(ctx, req.BarberID)
	if err != nil {
		uc.logger.Warn("CreateAppointment: barber=%d is busy: %v", req.BarberID, err)
		return nil, outcomeBusy, ErrArbitrationBusy
	}
	defer release()

	// Ожидание блокировки могло занять время: слот должен быть в будущем и на момент арбитража
	if !startTime.After(uc.timeProvider.Now()) {
		uc.logger.Warn("CreateAppointment: start=%s passed while waiting for barber=%d",
			startTime.Format(time.RFC3339), req.BarberID)
		return nil, outcomePastTime, ErrPastTime
	}

	appt := &domain.Appointment{
		BarberID:        req.BarberID,
		ServiceID:       req.ServiceID,
		ClientID:        req.ClientID,
		StartTime:       startTime,
		DurationMinutes: service.DurationMinutes,
		Status:          domain.StatusBooked,
		Note:            normalizeNote(req.Note),
	}

	// 6. Проверка пересечений и вставка в одной транзакции
	var created *domain.Appointment
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created = nil

		dayStart, dayEnd := scheduling.DayBounds(startTime)
		existing, err := uc.appointmentRepo.GetWithFilter(txCtx, domain.AppointmentFilter{
			BarberID:  ptr.Ptr(req.BarberID),
			From:      &dayStart,
			To:        &dayEnd,
			Statuses:  domain.OccupyingStatuses,
			ForUpdate: true,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}

		occupancy := scheduling.BuildOccupancy(req.BarberID, startTime, existing)
		if occupancy.Conflicts(scheduling.NewInterval(startTime, service.DurationMinutes)) {
			return ErrSlotTaken
		}

		created, err = uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				return ErrSlotTaken
			}
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			uc.logger.Warn("CreateAppointment: slot barber=%d start=%s already taken",
				req.BarberID, startTime.Format(time.RFC3339))
			return nil, outcomeSlotTaken, ErrSlotTaken
		case errors.Is(err, txmanager.ErrSerialization):
			uc.logger.Warn("CreateAppointment: serialization retries exhausted for barber=%d: %v", req.BarberID, err)
			return nil, outcomeBusy, ErrArbitrationBusy
		default:
			uc.logger.Error("CreateAppointment: failed to book barber=%d: %v", req.BarberID, err)
			return nil, outcomeInternal, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	return created, outcomeCreated, nil
}

// resolveWindow получает мастера и его рабочее окно на дату записи
// Отсутствующий или неактивный мастер, как и мастер без рабочих часов, означает,
// что время вне рабочего окна
func (uc *UseCase) resolveWindow(ctx context.Context, barberID int64, startTime time.Time) (scheduling.Window, string, error) {
	barber, err := uc.catalog.GetBarber(ctx, barberID)
	if err != nil {
		if errors.Is(err, catalog.ErrBarberNotFound) {
			uc.logger.Warn("CreateAppointment: barber id=%d not found", barberID)
			return scheduling.Window{}, outcomeOutsideHours, ErrOutsideWorkingHours
		}
		uc.logger.Error("CreateAppointment: failed to get barber id=%d: %v", barberID, err)
		return scheduling.Window{}, outcomeInternal, uc.catalogError(err)
	}
	if !barber.Active {
		uc.logger.Warn("CreateAppointment: barber id=%d is inactive", barberID)
		return scheduling.Window{}, outcomeOutsideHours, ErrOutsideWorkingHours
	}

	window, err := scheduling.ResolveWindow(barber, startTime)
	if err != nil {
		uc.logger.Warn("CreateAppointment: barber id=%d: %v", barberID, err)
		return scheduling.Window{}, outcomeOutsideHours, ErrOutsideWorkingHours
	}

	return window, "", nil
}

func (uc *UseCase) acquire(ctx context.Context, barberID int64) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, uc.arbitrationTimeout)
	defer cancel()

	started := time.Now()
	release, err := uc.locker.Acquire(lockCtx, barberID)
	if uc.metrics != nil {
		uc.metrics.ObserveArbitrationWait(time.Since(started))
	}

	return release, err
}

func (uc *UseCase) observeBooking(outcome string) {
	if uc.metrics != nil {
		uc.metrics.ObserveBooking(outcome)
	}
}

func (uc *UseCase) catalogError(err error) error {
	if errors.Is(err, catalog.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return fmt.Errorf("%w: catalog: %v", ErrInternal, err)
}

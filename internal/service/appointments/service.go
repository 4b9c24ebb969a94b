package appointments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-BarberScheduling/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-BarberScheduling/internal/scheduling"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments/models"
	"github.com/m04kA/SMC-BarberScheduling/pkg/ptr"
)

// Service сервис для чтения записей и ведения их жизненного цикла
type Service struct {
	appointmentRepo AppointmentRepository
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	location        *time.Location
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	metrics MetricsRecorder,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		appointmentRepo: appointmentRepo,
		metrics:         metrics,
		timeProvider:    timeProvider,
		location:        location,
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appt), nil
}

// ListAppointments получает записи в порядке начала
// Мастер, услуга, день и статус - необязательные фильтры
func (s *Service) ListAppointments(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListAppointments: fetching appointments for barber=%s, service=%s, date=%s, status=%s",
		idLabel(req.BarberID), idLabel(req.ServiceID), dateLabel(req.Date), statusLabel(req.Status))

	if req.BarberID != nil && *req.BarberID <= 0 {
		return nil, fmt.Errorf("%w: barberId must be positive", ErrInvalidInput)
	}
	if req.ServiceID != nil && *req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	statuses, err := s.statusFilter(req.Status)
	if err != nil {
		s.logger.Warn("ListAppointments: invalid status=%s", *req.Status)
		return nil, err
	}

	filter := domain.AppointmentFilter{
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		Statuses:  statuses,
	}
	if req.Date != nil {
		y, m, d := req.Date.Date()
		dayStart, dayEnd := scheduling.DayBounds(time.Date(y, m, d, 0, 0, 0, 0, s.location))
		filter.From = &dayStart
		filter.To = &dayEnd
	}

	appts, err := s.appointmentRepo.GetWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListAppointments: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListAppointments: successfully fetched %d appointments", len(appts))
	return models.FromDomainAppointmentList(appts), nil
}

// GetClientAppointments получает историю записей клиента, новые первыми
// Опционально фильтрует по статусу
func (s *Service) GetClientAppointments(ctx context.Context, req *models.GetClientAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetClientAppointments: fetching appointments for client=%d, status=%s",
		req.ClientID, statusLabel(req.Status))

	if req.ClientID <= 0 {
		return nil, fmt.Errorf("%w: clientId must be positive", ErrInvalidInput)
	}

	statuses, err := s.statusFilter(req.Status)
	if err != nil {
		s.logger.Warn("GetClientAppointments: invalid status=%s for client=%d", *req.Status, req.ClientID)
		return nil, err
	}

	appts, err := s.appointmentRepo.GetWithFilter(ctx, domain.AppointmentFilter{
		ClientID:    ptr.Ptr(req.ClientID),
		Statuses:    statuses,
		NewestFirst: true,
	})
	if err != nil {
		s.logger.Error("GetClientAppointments: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientAppointments: successfully fetched %d appointments for client=%d", len(appts), req.ClientID)
	return models.FromDomainAppointmentList(appts), nil
}

// UpdateStatus переводит запись в новый статус
// Разрешены только BOOKED -> COMPLETED и BOOKED -> CANCELLED. Смена выполняется
// compare-and-set в хранилище, поэтому из двух конкурентных смен проходит одна.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s", id, req.Status)

	target, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, id)
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	current, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("UpdateStatus: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", id, err)
		s.observeTransition(target, transitionFailed)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if !current.Status.CanTransitionTo(target) {
		s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for appointment id=%d",
			current.Status, target, id)
		s.observeTransition(target, transitionRejected)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
	}

	updated, err := s.appointmentRepo.UpdateStatus(ctx, id, current.Status, target, s.timeProvider.Now())
	if err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrStatusChanged):
			s.logger.Warn("UpdateStatus: appointment id=%d changed concurrently", id)
			s.observeTransition(target, transitionRejected)
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Warn("UpdateStatus: appointment id=%d not found during update", id)
			return nil, ErrAppointmentNotFound
		default:
			s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", id, err)
			s.observeTransition(target, transitionFailed)
			return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}
	}

	s.observeTransition(target, transitionApplied)
	s.logger.Info("UpdateStatus: successfully updated appointment id=%d to status=%s", id, target)
	return models.FromDomainAppointment(updated), nil
}

// statusFilter конвертирует необязательный статус в фильтр
func (s *Service) statusFilter(status *string) ([]domain.AppointmentStatus, error) {
	if status == nil || *status == "" {
		return nil, nil
	}

	st, err := models.ToDomainAppointmentStatus(*status)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
	}
	return []domain.AppointmentStatus{st}, nil
}

func (s *Service) observeTransition(target domain.AppointmentStatus, result string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(target), result)
	}
}

func statusLabel(status *string) string {
	if status == nil || *status == "" {
		return "any"
	}
	return *status
}

func idLabel(id *int64) string {
	if id == nil {
		return "any"
	}
	return strconv.FormatInt(*id, 10)
}

func dateLabel(date *time.Time) string {
	if date == nil {
		return "any"
	}
	return date.Format(domain.DateFormat)
}

package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// UpdateStatusRequest запрос на смену статуса записи
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListAppointmentsRequest запрос списка записей, все фильтры опциональны
type ListAppointmentsRequest struct {
	BarberID  *int64
	ServiceID *int64
	Date      *time.Time // календарный день в часовом поясе барбершопа
	Status    *string
}

// GetClientAppointmentsRequest запрос на получение истории записей клиента
type GetClientAppointmentsRequest struct {
	ClientID int64
	Status   *string // Фильтр по статусу (опционально)
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	BarberID        int64   `json:"barberId"`
	ServiceID       int64   `json:"serviceId"`
	ClientID        int64   `json:"clientId"`
	StartTime       string  `json:"startTime"` // RFC 3339 в часовом поясе барбершопа
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	Note            *string `json:"note,omitempty"`

	CompletedAt *string `json:"completedAt,omitempty"`
	CancelledAt *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:              a.ID,
		BarberID:        a.BarberID,
		ServiceID:       a.ServiceID,
		ClientID:        a.ClientID,
		StartTime:       a.StartTime.Format(time.RFC3339),
		EndTime:         a.EndTime().Format(time.RFC3339),
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		Note:            a.Note,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	if a.CompletedAt != nil {
		completedStr := a.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completedStr
	}
	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, appt := range appointments {
		if apptResp := FromDomainAppointment(appt); apptResp != nil {
			resp.Appointments = append(resp.Appointments, *apptResp)
		}
	}

	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

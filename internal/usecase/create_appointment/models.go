package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	BarberID  int64
	ServiceID int64
	ClientID  int64
	StartTime time.Time
	Note      *string
}

// Response модель созданной записи
type Response struct {
	ID              int64
	BarberID        int64
	ServiceID       int64
	ClientID        int64
	StartTime       time.Time
	DurationMinutes int
	Status          domain.AppointmentStatus
	Note            *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func newResponse(a *domain.Appointment) *Response {
	return &Response{
		ID:              a.ID,
		BarberID:        a.BarberID,
		ServiceID:       a.ServiceID,
		ClientID:        a.ClientID,
		StartTime:       a.StartTime,
		DurationMinutes: a.DurationMinutes,
		Status:          a.Status,
		Note:            a.Note,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

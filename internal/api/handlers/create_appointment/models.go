package create_appointment

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-BarberScheduling/internal/usecase/create_appointment"
)

var errInvalidStartTime = errors.New("invalid start time")

// Форматы времени начала без смещения трактуются в часовом поясе барбершопа
var localTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	BarberID  int64   `json:"barberId"`
	ServiceID int64   `json:"serviceId"`
	ClientID  int64   `json:"clientId"`
	StartTime string  `json:"startTime"` // RFC 3339 или локальное "2026-03-10T09:00"
	Note      *string `json:"note,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(location *time.Location) (*createAppointment.Request, error) {
	startTime, err := parseStartTime(r.StartTime, location)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		BarberID:  r.BarberID,
		ServiceID: r.ServiceID,
		ClientID:  r.ClientID,
		StartTime: startTime,
		Note:      r.Note,
	}, nil
}

func parseStartTime(value string, location *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errInvalidStartTime
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *models.AppointmentResponse {
	endTime := resp.StartTime.Add(time.Duration(resp.DurationMinutes) * time.Minute)
	return &models.AppointmentResponse{
		ID:              resp.ID,
		BarberID:        resp.BarberID,
		ServiceID:       resp.ServiceID,
		ClientID:        resp.ClientID,
		StartTime:       resp.StartTime.Format(time.RFC3339),
		EndTime:         endTime.Format(time.RFC3339),
		DurationMinutes: resp.DurationMinutes,
		Status:          string(resp.Status),
		Note:            resp.Note,
		CreatedAt:       resp.CreatedAt,
		UpdatedAt:       resp.UpdatedAt,
	}
}

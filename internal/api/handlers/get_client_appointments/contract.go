package get_client_appointments

import (
	"context"

	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments/models"
)

type AppointmentService interface {
	GetClientAppointments(ctx context.Context, req *models.GetClientAppointmentsRequest) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	createAppointmentHandler "github.com/m04kA/SMC-BarberScheduling/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-BarberScheduling/internal/api/handlers/get_appointment"
	getAvailabilityHandler "github.com/m04kA/SMC-BarberScheduling/internal/api/handlers/get_availability"
	getClientAppointmentsHandler "github.com/m04kA/SMC-BarberScheduling/internal/api/handlers/get_client_appointments"
	listAppointmentsHandler "github.com/m04kA/SMC-BarberScheduling/internal/api/handlers/list_appointments"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-BarberScheduling/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-BarberScheduling/internal/api/middleware"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments/models"
	"github.com/m04kA/SMC-BarberScheduling/pkg/metrics"
)

// AppointmentService операции над существующими записями
type AppointmentService interface {
	GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error)
	ListAppointments(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error)
	GetClientAppointments(ctx context.Context, req *models.GetClientAppointmentsRequest) (*models.AppointmentListResponse, error)
	UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Dependencies всё, что нужно роутеру
// Metrics и RateLimiter опциональны
type Dependencies struct {
	Availability getAvailabilityHandler.GetAvailabilityUseCase
	Booking      createAppointmentHandler.CreateAppointmentUseCase
	Appointments AppointmentService
	Location     *time.Location
	Metrics      *metrics.Metrics
	MetricsPath  string
	RateLimiter  *middleware.RateLimiter
	Logger       Logger
}

// NewRouter собирает HTTP маршруты сервиса
func NewRouter(deps Dependencies) *mux.Router {
	getAvailability := getAvailabilityHandler.NewHandler(deps.Availability, deps.Logger)
	createAppointment := createAppointmentHandler.NewHandler(deps.Booking, deps.Location, deps.Logger)
	getAppointment := getAppointmentHandler.NewHandler(deps.Appointments, deps.Logger)
	listAppointments := listAppointmentsHandler.NewHandler(deps.Appointments, deps.Logger)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(deps.Appointments, deps.Logger)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(deps.Appointments, deps.Logger)

	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(deps.Logger))

	if deps.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(deps.Metrics))
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// --- Доступность ---
	r.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)

	// --- Записи ---
	// Записи, меняющие состояние, идут через ограничитель частоты
	limited := func(h http.HandlerFunc) http.Handler {
		if deps.RateLimiter == nil {
			return h
		}
		return deps.RateLimiter.Middleware(h)
	}
	r.Handle("/appointments", limited(createAppointment.Handle)).Methods(http.MethodPost)
	r.Handle("/appointments/{id:[0-9]+}", limited(updateAppointmentStatus.Handle)).Methods(http.MethodPatch)

	r.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	r.HandleFunc("/appointments/{id:[0-9]+}", getAppointment.Handle).Methods(http.MethodGet)
	r.HandleFunc("/clients/{clientId:[0-9]+}/appointments", getClientAppointments.Handle).Methods(http.MethodGet)

	return r
}

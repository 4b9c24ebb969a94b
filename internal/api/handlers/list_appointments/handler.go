package list_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments/models"
)

const (
	msgInvalidBarberID  = "некорректный ID мастера"
	msgInvalidServiceID = "некорректный ID услуги"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus    = "неизвестный статус, допустимо BOOKED, COMPLETED или CANCELLED"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /appointments
// Query params (все опциональные): barberId, serviceId, date (YYYY-MM-DD), status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &models.ListAppointmentsRequest{}

	if raw := query.Get("barberId"); raw != "" {
		barberID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || barberID <= 0 {
			h.logger.Warn("GET /appointments - Invalid barber ID: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidBarberID)
			return
		}
		req.BarberID = &barberID
	}

	if raw := query.Get("serviceId"); raw != "" {
		serviceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || serviceID <= 0 {
			h.logger.Warn("GET /appointments - Invalid service ID: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
		req.ServiceID = &serviceID
	}

	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /appointments - Invalid date format: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = &date
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.ListAppointments(r.Context(), req)
	if err != nil {
		if errors.Is(err, appointments.ErrInvalidInput) {
			h.logger.Warn("GET /appointments - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /appointments - Failed to list appointments: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /appointments - Appointments retrieved successfully: query=%q, count=%d",
		r.URL.RawQuery, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result.Appointments)
}

package update_appointment_status

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidStatus        = "неизвестный статус, допустимо BOOKED, COMPLETED или CANCELLED"
	msgNotFound             = "запись не найдена"
	msgInvalidTransition    = "смена статуса недопустима для текущего состояния записи"
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

// Handle PATCH /appointments/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	appointmentID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || appointmentID <= 0 {
		h.logger.Warn("PATCH /appointments/{id} - Invalid appointment ID: %q", vars["id"])
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), appointmentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id} - Invalid status: appointment_id=%d, status=%q", appointmentID, req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id} - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id} - Invalid transition: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondConflict(w, handlers.CodeInvalidTransition, msgInvalidTransition)

		default:
			h.logger.Error("PATCH /appointments/{id} - Failed to update status: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id} - Status updated successfully: appointment_id=%d, status=%s",
		appointmentID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}

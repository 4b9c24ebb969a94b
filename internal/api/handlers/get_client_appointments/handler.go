package get_client_appointments

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
	msgInvalidClientID = "некорректный ID клиента"
	msgInvalidStatus   = "неизвестный статус, допустимо BOOKED, COMPLETED или CANCELLED"
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

// Handle GET /clients/{clientId}/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	clientID, err := strconv.ParseInt(vars["clientId"], 10, 64)
	if err != nil || clientID <= 0 {
		h.logger.Warn("GET /clients/{clientId}/appointments - Invalid client ID: %q", vars["clientId"])
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	// Получаем status из query параметров (опционально)
	var statusPtr *string
	if status := r.URL.Query().Get("status"); status != "" {
		statusPtr = &status
	}

	result, err := h.service.GetClientAppointments(r.Context(), &models.GetClientAppointmentsRequest{
		ClientID: clientID,
		Status:   statusPtr,
	})
	if err != nil {
		if errors.Is(err, appointments.ErrInvalidInput) {
			h.logger.Warn("GET /clients/{clientId}/appointments - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /clients/{clientId}/appointments - Failed to get appointments: client_id=%d, error=%v",
			clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /clients/{clientId}/appointments - Appointments retrieved successfully: client_id=%d, count=%d",
		clientID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result.Appointments)
}

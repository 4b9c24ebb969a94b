package create_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/api/handlers"
	createAppointment "github.com/m04kA/SMC-BarberScheduling/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidStartTime    = "некорректное время начала, ожидается RFC 3339 или YYYY-MM-DDTHH:MM"
	msgInvalidInput        = "некорректные данные записи"
	msgInactiveService     = "услуга не найдена или неактивна"
	msgOutsideWorkingHours = "выбранное время вне рабочего графика мастера"
	msgPastTime            = "выбранное время уже прошло"
	msgSlotTaken           = "выбранное время уже занято"
	msgArbitrationBusy     = "мастер сейчас обрабатывает другую запись, повторите попытку"
	msgCatalogUnavailable  = "справочник мастеров и услуг временно недоступен"

	retryAfterSeconds = 1
)

type Handler struct {
	useCase  CreateAppointmentUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateAppointmentUseCase, location *time.Location, logger Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(h.location)
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid start time %q: %v", req.StartTime, err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrSlotTaken):
			h.logger.Warn("POST /appointments - Slot taken: barber_id=%d, start=%s", req.BarberID, req.StartTime)
			handlers.RespondConflict(w, handlers.CodeSlotTaken, msgSlotTaken)

		case errors.Is(err, createAppointment.ErrInactiveOrUnknownService):
			h.logger.Warn("POST /appointments - Inactive or unknown service: service_id=%d", req.ServiceID)
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodeInactiveOrUnknownService, msgInactiveService)

		case errors.Is(err, createAppointment.ErrOutsideWorkingHours):
			h.logger.Warn("POST /appointments - Outside working hours: barber_id=%d, start=%s", req.BarberID, req.StartTime)
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodeOutsideWorkingHours, msgOutsideWorkingHours)

		case errors.Is(err, createAppointment.ErrPastTime):
			h.logger.Warn("POST /appointments - Past time: barber_id=%d, start=%s", req.BarberID, req.StartTime)
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodePastTime, msgPastTime)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createAppointment.ErrArbitrationBusy):
			h.logger.Warn("POST /appointments - Arbitration busy: barber_id=%d", req.BarberID)
			handlers.RespondServiceUnavailable(w, handlers.CodeArbitrationBusy, msgArbitrationBusy, retryAfterSeconds)

		case errors.Is(err, createAppointment.ErrCatalogUnavailable):
			h.logger.Error("POST /appointments - Catalog unavailable: %v", err)
			handlers.RespondServiceUnavailable(w, handlers.CodeServiceUnavailable, msgCatalogUnavailable, retryAfterSeconds)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: barber_id=%d, client_id=%d, error=%v",
				req.BarberID, req.ClientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, barber_id=%d, client_id=%d",
		result.ID, result.BarberID, result.ClientID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	getAvailability "github.com/m04kA/SMC-BarberScheduling/internal/usecase/get_availability"
)

const (
	msgInvalidBarberID    = "некорректный ID мастера"
	msgInvalidServiceID   = "некорректный ID услуги"
	msgMissingDate        = "дата обязательна"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgBarberNotFound     = "мастер не найден"
	msgServiceNotFound    = "услуга не найдена или неактивна"
	msgCatalogUnavailable = "справочник мастеров и услуг временно недоступен"
	msgInvalidRequest     = "некорректные параметры запроса"

	retryAfterSeconds = 1
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /availability
// Query params: barberId, serviceId, date (YYYY-MM-DD), все обязательные
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	barberID, err := strconv.ParseInt(query.Get("barberId"), 10, 64)
	if err != nil || barberID <= 0 {
		h.logger.Warn("GET /availability - Invalid barber ID: %q", query.Get("barberId"))
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	serviceID, err := strconv.ParseInt(query.Get("serviceId"), 10, 64)
	if err != nil || serviceID <= 0 {
		h.logger.Warn("GET /availability - Invalid service ID: %q", query.Get("serviceId"))
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		BarberID:  barberID,
		ServiceID: serviceID,
		Date:      date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrBarberNotFound):
			h.logger.Warn("GET /availability - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /availability - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid request: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		case errors.Is(err, getAvailability.ErrCatalogUnavailable):
			h.logger.Error("GET /availability - Catalog unavailable: %v", err)
			handlers.RespondServiceUnavailable(w, handlers.CodeServiceUnavailable, msgCatalogUnavailable, retryAfterSeconds)

		default:
			h.logger.Error("GET /availability - Failed to compute availability: barber_id=%d, service_id=%d, error=%v",
				barberID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability - Slots computed: barber_id=%d, service_id=%d, date=%s, count=%d",
		barberID, serviceID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

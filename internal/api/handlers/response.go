package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// Коды ошибок в теле ответа
const (
	CodeInvalidInput             = "invalid_input"
	CodeInactiveOrUnknownService = "inactive_or_unknown_service"
	CodeOutsideWorkingHours      = "outside_working_hours"
	CodePastTime                 = "past_time"
	CodeSlotTaken                = "slot_taken"
	CodeInvalidTransition        = "invalid_transition"
	CodeArbitrationBusy          = "arbitration_busy"
	CodeNotFound                 = "not_found"
	CodeTooManyRequests          = "too_many_requests"
	CodeServiceUnavailable       = "service_unavailable"
	CodeInternalError            = "internal_error"
)

const (
	msgInternalError = "внутренняя ошибка сервера"

	maxBodyBytes = 1 << 20
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// RespondBadRequest отправляет 400 с кодом invalid_input
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, CodeInvalidInput, message)
}

// RespondNotFound отправляет 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, CodeNotFound, message)
}

// RespondConflict отправляет 409
func RespondConflict(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusConflict, code, message)
}

// RespondServiceUnavailable отправляет 503 с заголовком Retry-After
func RespondServiceUnavailable(w http.ResponseWriter, code, message string, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	RespondError(w, http.StatusServiceUnavailable, code, message)
}

// RespondInternalError отправляет 500
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, CodeInternalError, msgInternalError)
}

// DecodeJSON декодирует тело запроса
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return err
	}

	return nil
}

package create_appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-BarberScheduling/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-BarberScheduling/pkg/logger"
)

type stubUseCase struct {
	got  *createAppointment.Request
	resp *createAppointment.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createAppointment.Request) (*createAppointment.Response, error) {
	s.got = req
	return s.resp, s.err
}

var loc = time.FixedZone("BRT", -3*60*60)

func post(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)
	uc := &stubUseCase{resp: &createAppointment.Response{
		ID: 5, BarberID: 1, ServiceID: 10, ClientID: 7,
		StartTime: start, DurationMinutes: 30, Status: domain.StatusBooked,
	}}
	h := NewHandler(uc, loc, logger.NewNop())

	rec := post(t, h, `{"barberId":1,"serviceId":10,"clientId":7,"startTime":"2026-03-10T09:00","note":"fade"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.got)
	assert.True(t, uc.got.StartTime.Equal(start), "local time is read in the shop timezone")
	require.NotNil(t, uc.got.Note)
	assert.Equal(t, "fade", *uc.got.Note)

	var body models.AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(5), body.ID)
	assert.Equal(t, "BOOKED", body.Status)
	assert.Equal(t, "2026-03-10T09:00:00-03:00", body.StartTime)
	assert.Equal(t, "2026-03-10T09:30:00-03:00", body.EndTime)
}

func TestHandle_RFC3339StartTime(t *testing.T) {
	uc := &stubUseCase{resp: &createAppointment.Response{ID: 1}}
	h := NewHandler(uc, loc, logger.NewNop())

	rec := post(t, h, `{"barberId":1,"serviceId":10,"clientId":7,"startTime":"2026-03-10T12:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, uc.got.StartTime.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, loc)))
}

func TestHandle_BadRequest(t *testing.T) {
	h := NewHandler(&stubUseCase{}, loc, logger.NewNop())

	for _, body := range []string{
		`{`,
		`{"barberId":1,"unknown":true}`,
		`{"barberId":1,"serviceId":10,"clientId":7,"startTime":"tomorrow"}`,
	} {
		rec := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), handlers.CodeInvalidInput)
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		status     int
		code       string
		retryAfter bool
	}{
		{createAppointment.ErrSlotTaken, http.StatusConflict, handlers.CodeSlotTaken, false},
		{createAppointment.ErrInactiveOrUnknownService, http.StatusBadRequest, handlers.CodeInactiveOrUnknownService, false},
		{createAppointment.ErrOutsideWorkingHours, http.StatusBadRequest, handlers.CodeOutsideWorkingHours, false},
		{createAppointment.ErrPastTime, http.StatusBadRequest, handlers.CodePastTime, false},
		{fmt.Errorf("%w: clientId", createAppointment.ErrInvalidInput), http.StatusBadRequest, handlers.CodeInvalidInput, false},
		{createAppointment.ErrArbitrationBusy, http.StatusServiceUnavailable, handlers.CodeArbitrationBusy, true},
		{createAppointment.ErrCatalogUnavailable, http.StatusServiceUnavailable, handlers.CodeServiceUnavailable, true},
		{createAppointment.ErrInternal, http.StatusInternalServerError, handlers.CodeInternalError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := NewHandler(&stubUseCase{err: tt.err}, loc, logger.NewNop())
			rec := post(t, h, `{"barberId":1,"serviceId":10,"clientId":7,"startTime":"2026-03-10T09:00:00-03:00"}`)

			assert.Equal(t, tt.status, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)

			if tt.retryAfter {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, rec.Header().Get("Retry-After"))
			}
		})
	}
}

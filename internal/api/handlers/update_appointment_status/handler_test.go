package update_appointment_status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberScheduling/internal/api/handlers"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments"
	"github.com/m04kA/SMC-BarberScheduling/internal/service/appointments/models"
	"github.com/m04kA/SMC-BarberScheduling/pkg/logger"
)

type stubService struct {
	gotID  int64
	gotReq *models.UpdateStatusRequest
	err    error
}

func (s *stubService) UpdateStatus(_ context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.gotID = id
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: id, Status: req.Status}, nil
}

func patch(h *Handler, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/appointments/"+id, strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": id})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_OK(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, logger.NewNop())

	rec := patch(h, "12", `{"status":"CANCELLED"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), svc.gotID)
	assert.Equal(t, "CANCELLED", svc.gotReq.Status)

	var body models.AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CANCELLED", body.Status)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		err    error
		status int
		code   string
	}{
		{"bad id", "abc", nil, http.StatusBadRequest, handlers.CodeInvalidInput},
		{"unknown status", "1", appointments.ErrInvalidInput, http.StatusBadRequest, handlers.CodeInvalidInput},
		{"not found", "1", appointments.ErrAppointmentNotFound, http.StatusNotFound, handlers.CodeNotFound},
		{"terminal", "1", appointments.ErrInvalidTransition, http.StatusConflict, handlers.CodeInvalidTransition},
		{"internal", "1", appointments.ErrInternal, http.StatusInternalServerError, handlers.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubService{err: tt.err}, logger.NewNop())
			rec := patch(h, tt.id, `{"status":"COMPLETED"}`)

			assert.Equal(t, tt.status, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

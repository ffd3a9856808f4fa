package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/api/handler"
	"github.com/SydneyUniLibrary/exlibris-status-api/internal/status"
)

type stubRepository struct {
	record *status.Record
	err    error
}

func (s *stubRepository) Get(context.Context, string) (*status.Record, error) {
	return s.record, s.err
}

func (s *stubRepository) Put(context.Context, *status.Record) error { return nil }

func (s *stubRepository) TouchLastUpdate(context.Context, string, string) error { return nil }

func TestGetStatus(t *testing.T) {
	repo := &stubRepository{record: &status.Record{
		Product:            "Primo",
		SystemID:           "1290",
		SystemService:      "Primo",
		ServiceStatus:      status.ServiceMaintenanceScheduled,
		Maintenance:        status.MaintenanceOff,
		AffectedEnv:        status.EnvSandbox,
		MaintenanceStart:   "2024-01-05 21:00 AEDT",
		MaintenanceStop:    "2024-01-05 23:00 AEDT",
		MaintenanceMessage: "Due to routine maintenance...",
		MaintenanceDate:    "2024-01-05T10:00:00Z",
		LastUpdate:         "2024-01-05 21:05",
		RawAPIResponse:     "<exlibriscloudstatus/>",
	}}
	h := handler.NewStatusHandler(repo, "Primo", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Primo", body["product"])
	assert.Equal(t, "OK, Maintenance Scheduled", body["service_status"])
	assert.Equal(t, false, body["maintenance"])
	assert.Equal(t, "Sandbox", body["affected_env"])
	assert.Equal(t, "2024-01-05 21:00 AEDT", body["maintenance_start"])
	assert.Equal(t, "<exlibriscloudstatus/>", body["raw_api_response"])
}

func TestGetStatus_MaintenanceUnknownSerializesAsString(t *testing.T) {
	repo := &stubRepository{record: &status.Record{
		Product:       "Primo",
		ServiceStatus: status.ServiceUnknown,
		Maintenance:   status.MaintenanceUnknown,
		AffectedEnv:   status.EnvUnknown,
	}}
	h := handler.NewStatusHandler(repo, "Primo", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unknown", body["maintenance"])
	assert.Equal(t, "unknown", body["service_status"])
}

func TestGetStatus_StoreErrors(t *testing.T) {
	const wantBody = `{"result":"An error has occurred, please check with your local library developer."}`

	tests := []struct {
		name string
		err  error
	}{
		{name: "record not found", err: status.ErrRecordNotFound},
		{name: "store failure", err: errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewStatusHandler(&stubRepository{err: tt.err}, "Primo", zerolog.Nop())

			req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
			rec := httptest.NewRecorder()
			h.GetStatus(rec, req)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			// The payload never leaks the underlying error.
			assert.JSONEq(t, wantBody, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

package response_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/api/middleware"
	"github.com/SydneyUniLibrary/exlibris-status-api/internal/api/response"
)

func requestWithID(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id == "" {
		return req
	}
	handler := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		req = r
	}))
	req.Header.Set("X-Request-Id", id)
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(context.Background()))
	return req
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, requestWithID("req_test"), http.StatusOK, map[string]string{"product": "Primo"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req_test", rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"product":"Primo"}`, rec.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, requestWithID(""), http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
}

func TestGenericError(t *testing.T) {
	rec := httptest.NewRecorder()
	response.GenericError(rec, requestWithID("req_test"), http.StatusInternalServerError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"result":"An error has occurred, please check with your local library developer."}`,
		rec.Body.String(),
	)
}

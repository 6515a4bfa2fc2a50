package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/logging"
)

func TestWriteError_StatusAndBody(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{apperror.Validation("name too short"), http.StatusBadRequest, "VALIDATION_ERROR", "name too short"},
		{apperror.NotFound("no such product"), http.StatusNotFound, "NOT_FOUND", "no such product"},
		{apperror.InvalidState("order not confirmed"), http.StatusConflict, "INVALID_STATE_TRANSITION", "order not confirmed"},
		{errors.New("pq: secret detail"), http.StatusInternalServerError, "UNKNOWN_ERROR", "Internal Server Error"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			r := NewRouter(logging.Discard())
			r.Get("/x", func(w http.ResponseWriter, req *http.Request) {
				WriteError(w, req, logging.Discard(), tc.err)
			})
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tc.status, rec.Code)
			var body ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.message, body.Message)
			assert.NotEmpty(t, body.CorrelationID)
			assert.Equal(t, body.CorrelationID, rec.Header().Get(HeaderCorrelationID))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(req, &v))
	assert.Equal(t, "x", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
	assert.True(t, apperror.Is(DecodeJSON(req, &v), apperror.KindValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.True(t, apperror.Is(DecodeJSON(req, &v), apperror.KindValidation))
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(logging.Discard()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package handlers

import (
	"MediBook/services"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type denyAllVerifier struct{}

func (denyAllVerifier) Verify(ctx context.Context, token string) (bool, error) {
	return false, nil
}

func newBookingRouter(svc *services.BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/book/:regNo", NewBookingHandler(svc).Book)
	return router
}

func postBooking(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/book/A12345", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBookRejectsMalformedJSON(t *testing.T) {
	router := newBookingRouter(services.NewBookingService(nil, nil, nil, denyAllVerifier{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/book/A12345", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookRejectsInvalidPayloadBeforeService(t *testing.T) {
	router := newBookingRouter(services.NewBookingService(nil, nil, nil, denyAllVerifier{}, nil))

	rec := postBooking(t, router, map[string]interface{}{
		"name": "Rahim Uddin",
		// missing phone, date, slot, location, recaptcha
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookFailedVerificationReturns403(t *testing.T) {
	router := newBookingRouter(services.NewBookingService(nil, nil, nil, denyAllVerifier{}, nil))

	rec := postBooking(t, router, map[string]interface{}{
		"name":              "Rahim Uddin",
		"age":               34,
		"sex":               "Male",
		"phone":             "01711000000",
		"date":              "2026-09-14T10:00:00Z",
		"timeSlotId":        5,
		"consultLocationId": 3,
		"recaptchaToken":    "token",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, services.ReasonVerificationFailed, body["reason"])
}

func TestBookingStatusMapping(t *testing.T) {
	tests := []struct {
		reason string
		status int
	}{
		{services.ReasonInvalidRequest, http.StatusBadRequest},
		{services.ReasonVerificationFailed, http.StatusForbidden},
		{services.ReasonProviderNotFound, http.StatusNotFound},
		{services.ReasonLocationNotFound, http.StatusNotFound},
		{services.ReasonSlotNotFound, http.StatusNotFound},
		{services.ReasonDuplicateBooking, http.StatusConflict},
		{services.ReasonSlotFull, http.StatusConflict},
		{services.ReasonBookingConflict, http.StatusServiceUnavailable},
		{services.ReasonInternalError, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.status, bookingStatus(tc.reason), tc.reason)
	}
}

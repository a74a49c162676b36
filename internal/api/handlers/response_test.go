package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.NewValidationError("duration", "out of bounds"), http.StatusBadRequest, CodeValidation},
		{"wrapped validation", fmt.Errorf("create: %w", domain.NewValidationError("", "past date")), http.StatusBadRequest, CodeValidation},
		{"conflict", &domain.ConflictError{BookingID: "b-1"}, http.StatusConflict, CodeConflict},
		{"invalid transition", &domain.InvalidTransitionError{From: domain.StatusCompleted, Event: domain.EventCancel}, http.StatusConflict, CodeInvalidTransition},
		{"forbidden", fmt.Errorf("%w: not owner", domain.ErrForbidden), http.StatusForbidden, CodeForbidden},
		{"not found", fmt.Errorf("%w: %w", domain.ErrNotFound, errors.New("bookings: booking not found")), http.StatusNotFound, CodeNotFound},
		{"transient", fmt.Errorf("%w: lock timeout", domain.ErrTransient), http.StatusServiceUnavailable, CodeUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			status := RespondDomainError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestRespondDomainError_Details(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDomainError(rec, &domain.ConflictError{BookingID: "b-42"})
	assert.Equal(t, "b-42", decodeError(t, rec).Details["bookingId"])

	rec = httptest.NewRecorder()
	RespondDomainError(rec, &domain.InvalidTransitionError{
		From: domain.StatusPending, Event: domain.EventAccept, Reason: "payment not cleared",
	})
	body := decodeError(t, rec)
	assert.Equal(t, "pending", body.Details["from"])
	assert.Equal(t, "accept", body.Details["event"])
	assert.Equal(t, "payment not cleared", body.Details["reason"])

	rec = httptest.NewRecorder()
	RespondDomainError(rec, fmt.Errorf("%w: %w", domain.ErrNotFound, errors.New("bookings: booking not found")))
	assert.Equal(t, msgNotFound, decodeError(t, rec).Message)

	rec = httptest.NewRecorder()
	RespondDomainError(rec, domain.ErrTransient)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestValidate(t *testing.T) {
	type payload struct {
		Topic    string `json:"consultationTopic" validate:"required,max=5"`
		Duration int    `json:"duration" validate:"gte=0"`
	}

	err := Validate(&payload{Topic: "ok"})
	require.NoError(t, err)

	err = Validate(&payload{})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "consultationTopic", validationErr.Field)
	assert.Equal(t, "is required", validationErr.Reason)

	err = Validate(&payload{Topic: "too long"})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "must be at most 5", validationErr.Reason)

	err = Validate(&payload{Topic: "ok", Duration: -1})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "duration", validationErr.Field)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Event string `json:"event"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"event":"accept"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "accept", v.Event)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(r, &v))
}

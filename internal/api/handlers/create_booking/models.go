package create_booking

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	createBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	AttorneyID        string   `json:"attorneyId" validate:"required"`
	BookingDate       string   `json:"bookingDate" validate:"required"`   // ISO 8601, "2026-10-20T10:00:00+03:00"
	Duration          int      `json:"duration" validate:"gte=0,lte=480"` // минуты, 0 = минимальная по политике
	ConsultationTopic string   `json:"consultationTopic" validate:"required"`
	Description       *string  `json:"description,omitempty"`
	Documents         []string `json:"documents,omitempty" validate:"omitempty,dive,required"`
	BookingType       string   `json:"bookingType" validate:"required"`
	ConsultationMode  string   `json:"consultationMode" validate:"required"`
	// RequestID ключ идемпотентности, если клиент не может передать заголовок Idempotency-Key
	RequestID *string `json:"requestId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(requester domain.Actor, idempotencyKey string) (*createBooking.Request, error) {
	start, err := time.Parse(time.RFC3339, r.BookingDate)
	if err != nil {
		return nil, domain.NewValidationError("bookingDate", "must be an ISO 8601 timestamp with offset")
	}

	key := r.RequestID
	if idempotencyKey != "" {
		key = &idempotencyKey
	}

	return &createBooking.Request{
		Requester:        requester,
		AttorneyID:       r.AttorneyID,
		Start:            start,
		DurationMinutes:  r.Duration,
		Topic:            r.ConsultationTopic,
		Description:      r.Description,
		Documents:        r.Documents,
		BookingType:      r.BookingType,
		ConsultationMode: r.ConsultationMode,
		IdempotencyKey:   key,
	}, nil
}

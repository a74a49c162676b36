package transition_booking

import (
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	transitionBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/transition_booking"
)

// TransitionBookingRequest HTTP request model
type TransitionBookingRequest struct {
	Event  string  `json:"event" validate:"required,oneof=accept reject cancel complete no_show"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *TransitionBookingRequest) ToUseCaseRequest(actor domain.Actor, bookingID string) *transitionBooking.Request {
	return &transitionBooking.Request{
		Actor:     actor,
		BookingID: bookingID,
		Event:     r.Event,
		Reason:    r.Reason,
	}
}

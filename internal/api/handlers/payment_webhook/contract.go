package payment_webhook

import (
	"context"

	transitionBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/transition_booking"
)

type PaymentUseCase interface {
	MarkPaid(ctx context.Context, req *transitionBooking.PaymentRequest) (*transitionBooking.PaymentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

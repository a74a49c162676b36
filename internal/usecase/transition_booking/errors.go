package transition_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("transition_booking: booking not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("transition_booking: internal error")
)

const (
	reasonStale      = "booking was modified concurrently, refetch and retry"
	eventPaymentPaid = "payment_succeeded"
)

package lifecycle

import "errors"

var (
	// ErrReservation возвращается при попытке материализовать бронирование без действующей резервации
	ErrReservation = errors.New("lifecycle: reservation is not active")

	// ErrMeetingLink возвращается, если не удалось выдать ссылку на встречу
	ErrMeetingLink = errors.New("lifecycle: failed to assign meeting link")

	// ErrInvariant возвращается при нарушении инварианта бронирования
	ErrInvariant = errors.New("lifecycle: booking invariant violated")

	// ErrTable возвращается при некорректной таблице переходов
	ErrTable = errors.New("lifecycle: invalid transition table")
)

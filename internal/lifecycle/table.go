package lifecycle

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

type edge struct {
	from  domain.BookingStatus
	event domain.Event
}

// guard возвращает причину отказа или пустую строку
type guard func(b *domain.Booking, now time.Time, p Policy) string

// transitions единственный источник допустимых переходов
var transitions = map[edge]struct {
	to    domain.BookingStatus
	guard guard
}{
	{domain.StatusPending, domain.EventAccept}:     {to: domain.StatusConfirmed, guard: paymentCleared},
	{domain.StatusPending, domain.EventReject}:     {to: domain.StatusRejected},
	{domain.StatusPending, domain.EventCancel}:     {to: domain.StatusCancelled},
	{domain.StatusConfirmed, domain.EventComplete}: {to: domain.StatusCompleted, guard: slotEnded},
	{domain.StatusConfirmed, domain.EventCancel}:   {to: domain.StatusCancelled, guard: slotNotStarted},
	{domain.StatusConfirmed, domain.EventNoShow}:   {to: domain.StatusCancelled, guard: graceElapsed},
}

// Target возвращает состояние, в которое ведет событие, если такой переход есть в таблице
func Target(from domain.BookingStatus, event domain.Event) (domain.BookingStatus, bool) {
	t, ok := transitions[edge{from: from, event: event}]
	return t.to, ok
}

func paymentCleared(b *domain.Booking, _ time.Time, _ Policy) string {
	if b.AwaitingPayment {
		return "payment not cleared"
	}
	return ""
}

func slotEnded(b *domain.Booking, now time.Time, _ Policy) string {
	if now.Before(b.Slot.End()) {
		return "consultation has not ended yet"
	}
	return ""
}

func slotNotStarted(b *domain.Booking, now time.Time, _ Policy) string {
	if !now.Before(b.Slot.Start()) {
		return "consultation has already started"
	}
	return ""
}

func graceElapsed(b *domain.Booking, now time.Time, p Policy) string {
	if now.Before(b.Slot.End().Add(p.NoShowGrace)) {
		return "no-show grace period has not elapsed"
	}
	return ""
}

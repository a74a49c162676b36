package notifier

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Типы событий в топике уведомлений
const (
	EventCreated = "booking.created"
	EventPaid    = "booking.paid"
)

// BookingEvent сообщение о переходе бронирования
type BookingEvent struct {
	Type            string    `json:"type"`
	BookingID       string    `json:"bookingId"`
	AttorneyID      string    `json:"attorneyId"`
	RequesterID     string    `json:"requesterId"`
	Status          string    `json:"status"`
	AwaitingPayment bool      `json:"awaitingPayment"`
	BookingType     string    `json:"bookingType"`
	Mode            string    `json:"consultationMode"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	MeetingLink     *string   `json:"meetingLink,omitempty"`
	Reason          *string   `json:"reason,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// NewBookingEvent строит сообщение по состоянию бронирования после перехода
// eventType: booking.created, booking.paid или "booking." + имя события жизненного цикла
func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		Type:            eventType,
		BookingID:       b.ID,
		AttorneyID:      b.AttorneyID,
		RequesterID:     b.RequesterID,
		Status:          string(b.Status),
		AwaitingPayment: b.AwaitingPayment,
		BookingType:     string(b.BookingType),
		Mode:            string(b.ConsultationMode),
		Start:           b.Slot.Start().UTC(),
		End:             b.Slot.End().UTC(),
		MeetingLink:     b.MeetingLink,
		Reason:          b.CancellationReason,
		OccurredAt:      b.TransitionedAt.UTC(),
	}
}

// TransitionEventType тип сообщения для события жизненного цикла
func TransitionEventType(event domain.Event) string {
	return "booking." + string(event)
}

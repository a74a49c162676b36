package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus lifecycle state of a booking. Wire values are shared with existing clients.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRejected  BookingStatus = "rejected"
)

// ParseBookingStatus converts a wire value into a BookingStatus
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch status := BookingStatus(s); status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRejected:
		return status, nil
	default:
		return "", NewValidationError("status", fmt.Sprintf("unknown status %q", s))
	}
}

// IsActive returns true if the booking still holds its interval
func (s BookingStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed:
		return true
	case StatusCompleted, StatusCancelled, StatusRejected:
		return false
	default:
		return false
	}
}

// IsTerminal returns true if no transition can leave the status
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	case StatusPending, StatusConfirmed:
		return false
	default:
		return false
	}
}

// ConsultationMode how the consultation is held
type ConsultationMode string

const (
	ModeVideo    ConsultationMode = "video"
	ModeAudio    ConsultationMode = "audio"
	ModeInPerson ConsultationMode = "in_person"
	ModeChat     ConsultationMode = "chat"
)

// ParseConsultationMode converts a wire value into a ConsultationMode
func ParseConsultationMode(s string) (ConsultationMode, error) {
	switch mode := ConsultationMode(s); mode {
	case ModeVideo, ModeAudio, ModeInPerson, ModeChat:
		return mode, nil
	default:
		return "", NewValidationError("consultationMode", fmt.Sprintf("unknown consultation mode %q", s))
	}
}

// RequiresMeetingLink returns true for modes held over a call
func (m ConsultationMode) RequiresMeetingLink() bool {
	switch m {
	case ModeVideo, ModeAudio:
		return true
	case ModeInPerson, ModeChat:
		return false
	default:
		return false
	}
}

// BookingType kind of appointment
type BookingType string

const (
	TypeConsultation BookingType = "consultation"
	TypeMeeting      BookingType = "meeting"
)

// ParseBookingType converts a wire value into a BookingType
func ParseBookingType(s string) (BookingType, error) {
	switch bt := BookingType(s); bt {
	case TypeConsultation, TypeMeeting:
		return bt, nil
	default:
		return "", NewValidationError("bookingType", fmt.Sprintf("unknown booking type %q", s))
	}
}

// Booking represents a consultation booking with an attorney
type Booking struct {
	ID          string
	AttorneyID  string
	RequesterID string
	Slot        TimeSlot
	Status      BookingStatus

	// AwaitingPayment is only meaningful while Status is pending
	AwaitingPayment bool

	ConsultationMode ConsultationMode
	BookingType      BookingType
	Amount           decimal.Decimal
	Currency         string
	PaymentReference *string
	PaidAt           *time.Time

	// MeetingLink is set only while the booking is confirmed and the mode requires a link
	MeetingLink *string

	Topic       string
	Description *string
	Documents   []string

	IdempotencyKey *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt      time.Time
	TransitionedAt time.Time
}

// Clone returns a deep copy of the booking
func (b *Booking) Clone() *Booking {
	c := *b
	if b.Documents != nil {
		c.Documents = append([]string(nil), b.Documents...)
	}
	c.PaymentReference = cloneString(b.PaymentReference)
	c.MeetingLink = cloneString(b.MeetingLink)
	c.Description = cloneString(b.Description)
	c.IdempotencyKey = cloneString(b.IdempotencyKey)
	c.CancellationReason = cloneString(b.CancellationReason)
	c.PaidAt = cloneTime(b.PaidAt)
	c.CancelledAt = cloneTime(b.CancelledAt)
	return &c
}

// PaymentCleared returns true once the payment-completion signal has been recorded
func (b *Booking) PaymentCleared() bool {
	return b.PaidAt != nil
}

// IsOwnedBy returns true if the user is the requester or the attorney of the booking
func (b *Booking) IsOwnedBy(userID string) bool {
	return b.RequesterID == userID || b.AttorneyID == userID
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// BookingFilter read-side projection parameters
type BookingFilter struct {
	AttorneyID  *string
	RequesterID *string
	Statuses    []BookingStatus
	From        *time.Time // bookings ending after From
	To          *time.Time // bookings starting before To
	Page        int
	Limit       int
}

// Normalize applies default paging values
func (f *BookingFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
}

// Offset number of rows to skip for the current page
func (f *BookingFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination metadata of a listed page
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// NewPagination builds pagination metadata for a normalized filter
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

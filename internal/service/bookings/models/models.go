package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Request модели

// ListBookingsRequest запрос на получение бронирований вызывающего
type ListBookingsRequest struct {
	Actor  domain.Actor
	Status *string    // Один статус или несколько через запятую
	From   *time.Time // Бронирования, заканчивающиеся после From
	To     *time.Time // Бронирования, начинающиеся до To
	Page   int
	Limit  int
}

// ToDomainFilter конвертирует request в domain фильтр.
// Адвокат видит бронирования к себе, клиент свои заявки.
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingFilter, error) {
	filter := domain.BookingFilter{
		From:  r.From,
		To:    r.To,
		Page:  r.Page,
		Limit: r.Limit,
	}

	userID := r.Actor.UserID
	if r.Actor.Role == domain.RoleAttorney {
		filter.AttorneyID = &userID
	} else {
		filter.RequesterID = &userID
	}

	if r.Status != nil {
		for _, raw := range strings.Split(*r.Status, ",") {
			status, err := domain.ParseBookingStatus(strings.TrimSpace(raw))
			if err != nil {
				return filter, err
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return filter, domain.NewValidationError("to", "must be after from")
	}
	if r.Page > domain.MaxPage {
		return filter, domain.NewValidationError("page", fmt.Sprintf("must be at most %d", domain.MaxPage))
	}

	filter.Normalize()
	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID               string  `json:"id"`
	AttorneyID       string  `json:"attorneyId"`
	RequesterID      string  `json:"requesterId"`
	BookingDate      string  `json:"bookingDate"` // ISO 8601, начало
	EndDate          string  `json:"endDate"`     // ISO 8601, окончание
	Duration         int     `json:"duration"`    // минуты
	Status           string  `json:"status"`
	AwaitingPayment  bool    `json:"awaitingPayment"`
	ConsultationMode string  `json:"consultationMode"`
	BookingType      string  `json:"bookingType"`
	Amount           string  `json:"amount"`
	Currency         string  `json:"currency,omitempty"`
	PaymentReference *string `json:"paymentReference,omitempty"`
	PaidAt           *string `json:"paidAt,omitempty"`
	MeetingLink      *string `json:"meetingLink,omitempty"`

	ConsultationTopic string   `json:"consultationTopic"`
	Description       *string  `json:"description,omitempty"`
	Documents         []string `json:"documents"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt      time.Time `json:"createdAt"`
	TransitionedAt time.Time `json:"transitionedAt"`
}

// Pagination параметры страницы в ответе
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	Pagination Pagination        `json:"pagination"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	documents := b.Documents
	if documents == nil {
		documents = []string{}
	}

	return &BookingResponse{
		ID:                 b.ID,
		AttorneyID:         b.AttorneyID,
		RequesterID:        b.RequesterID,
		BookingDate:        b.Slot.Start().UTC().Format(time.RFC3339),
		EndDate:            b.Slot.End().UTC().Format(time.RFC3339),
		Duration:           b.Slot.DurationMinutes(),
		Status:             string(b.Status),
		AwaitingPayment:    b.AwaitingPayment,
		ConsultationMode:   string(b.ConsultationMode),
		BookingType:        string(b.BookingType),
		Amount:             b.Amount.StringFixed(2),
		Currency:           b.Currency,
		PaymentReference:   b.PaymentReference,
		PaidAt:             formatTime(b.PaidAt),
		MeetingLink:        b.MeetingLink,
		ConsultationTopic:  b.Topic,
		Description:        b.Description,
		Documents:          documents,
		CancellationReason: b.CancellationReason,
		CancelledAt:        formatTime(b.CancelledAt),
		CreatedAt:          b.CreatedAt.UTC(),
		TransitionedAt:     b.TransitionedAt.UTC(),
	}
}

// FromDomainBookingList конвертирует страницу domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, p domain.Pagination) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
		Pagination: Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      p.Total,
			TotalPages: p.TotalPages,
		},
	}

	for _, booking := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(booking))
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

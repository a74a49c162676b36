package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-ConsultationService/internal/conflictguard"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Policy настраиваемая часть жизненного цикла
type Policy struct {
	// AcceptanceRequired типы бронирований, которые начинают в pending и ждут решения адвоката
	AcceptanceRequired map[domain.BookingType]bool
	// NoShowGrace сколько ждать после окончания слота, прежде чем отменить неявку
	NoShowGrace time.Duration
}

// DefaultPolicy консультации проходят через pending, встречи подтверждаются сразу
func DefaultPolicy() Policy {
	return Policy{
		AcceptanceRequired: map[domain.BookingType]bool{domain.TypeConsultation: true},
		NoShowGrace:        30 * time.Minute,
	}
}

// NewPolicy собирает политику из списка типов, требующих подтверждения
func NewPolicy(acceptanceRequired []string, noShowGrace time.Duration) (Policy, error) {
	p := Policy{AcceptanceRequired: make(map[domain.BookingType]bool), NoShowGrace: noShowGrace}
	for _, raw := range acceptanceRequired {
		bt, err := domain.ParseBookingType(raw)
		if err != nil {
			return Policy{}, err
		}
		p.AcceptanceRequired[bt] = true
	}
	return p, nil
}

// Draft данные нового бронирования до материализации
type Draft struct {
	RequesterID      string
	ConsultationMode domain.ConsultationMode
	BookingType      domain.BookingType
	Topic            string
	Description      *string
	Documents        []string
	IdempotencyKey   *string
}

// Payment решение платежного шлюза для нового бронирования
type Payment struct {
	RequiresPayment bool
	Cleared         bool
	Amount          decimal.Decimal
	Currency        string
}

// Machine конечный автомат бронирования
type Machine struct {
	policy Policy
	links  MeetingLinkProvider
	clock  TimeProvider
}

// NewMachine создает автомат бронирования
func NewMachine(policy Policy, links MeetingLinkProvider, clock TimeProvider) *Machine {
	if clock == nil {
		clock = &RealTimeProvider{}
	}
	return &Machine{policy: policy, links: links, clock: clock}
}

// Materialize создает бронирование в начальном состоянии из действующей резервации.
// pending, если тип требует подтверждения адвоката или оплата обязательна и не прошла,
// иначе сразу confirmed (со ссылкой на встречу, если она нужна).
func (m *Machine) Materialize(res *conflictguard.Reservation, draft Draft, payment Payment) (*domain.Booking, error) {
	if res == nil || !res.Active() {
		return nil, fmt.Errorf("%w: Materialize - reservation is not active", ErrReservation)
	}

	now := m.clock.Now()
	awaitingPayment := payment.RequiresPayment && !payment.Cleared

	b := &domain.Booking{
		ID:               uuid.NewString(),
		AttorneyID:       res.AttorneyID,
		RequesterID:      draft.RequesterID,
		Slot:             res.Slot,
		Status:           domain.StatusPending,
		AwaitingPayment:  awaitingPayment,
		ConsultationMode: draft.ConsultationMode,
		BookingType:      draft.BookingType,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Topic:            draft.Topic,
		Description:      draft.Description,
		Documents:        draft.Documents,
		IdempotencyKey:   draft.IdempotencyKey,
		CreatedAt:        now,
		TransitionedAt:   now,
	}

	if m.policy.AcceptanceRequired[draft.BookingType] || awaitingPayment {
		return b, nil
	}

	if err := m.confirm(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Apply применяет событие к бронированию и возвращает новую версию.
// Исходное бронирование не изменяется.
func (m *Machine) Apply(b *domain.Booking, event domain.Event, reason *string) (*domain.Booking, error) {
	t, ok := transitions[edge{from: b.Status, event: event}]
	if !ok {
		return nil, &domain.InvalidTransitionError{From: b.Status, Event: event}
	}

	now := m.clock.Now()
	if t.guard != nil {
		if why := t.guard(b, now, m.policy); why != "" {
			return nil, &domain.InvalidTransitionError{From: b.Status, Event: event, Reason: why}
		}
	}

	next := b.Clone()
	next.Status = t.to
	next.TransitionedAt = now

	switch t.to {
	case domain.StatusConfirmed:
		if err := m.confirm(next); err != nil {
			return nil, err
		}
	case domain.StatusCancelled:
		next.MeetingLink = nil
		next.AwaitingPayment = false
		next.CancelledAt = &now
		next.CancellationReason = cancellationReason(event, reason)
	case domain.StatusCompleted, domain.StatusRejected:
		next.MeetingLink = nil
		next.AwaitingPayment = false
		if event == domain.EventReject {
			next.CancellationReason = trimmed(reason)
		}
	case domain.StatusPending:
		return nil, fmt.Errorf("%w: Apply - transition back into pending", ErrTable)
	}

	return next, nil
}

// MarkPaid фиксирует внешний сигнал об успешной оплате.
// Снимает флаг ожидания оплаты; если тип не требует подтверждения адвоката, бронирование
// подтверждается. Повторный сигнал для уже оплаченного бронирования возвращает changed=false.
func (m *Machine) MarkPaid(b *domain.Booking, reference string) (next *domain.Booking, changed bool, err error) {
	if b.PaymentCleared() {
		return b, false, nil
	}
	if b.Status != domain.StatusPending {
		return nil, false, &domain.InvalidTransitionError{From: b.Status, Event: "payment_succeeded",
			Reason: "payment can only be recorded for pending bookings"}
	}

	now := m.clock.Now()
	next = b.Clone()
	next.AwaitingPayment = false
	next.PaidAt = &now
	next.PaymentReference = &reference

	if !m.policy.AcceptanceRequired[next.BookingType] {
		next.Status = domain.StatusConfirmed
		next.TransitionedAt = now
		if err := m.confirm(next); err != nil {
			return nil, false, err
		}
	}
	return next, true, nil
}

// confirm выдает ссылку на встречу при входе в confirmed
func (m *Machine) confirm(b *domain.Booking) error {
	b.Status = domain.StatusConfirmed
	b.AwaitingPayment = false
	if !b.ConsultationMode.RequiresMeetingLink() {
		b.MeetingLink = nil
		return nil
	}
	link, err := m.links.NewLink(b)
	if err != nil {
		return fmt.Errorf("%w: confirm - booking=%s: %v", ErrMeetingLink, b.ID, err)
	}
	b.MeetingLink = &link
	return nil
}

// CheckInvariants проверяет инварианты полей бронирования
func CheckInvariants(b *domain.Booking) error {
	wantLink := b.Status == domain.StatusConfirmed && b.ConsultationMode.RequiresMeetingLink()
	if wantLink != (b.MeetingLink != nil) {
		return fmt.Errorf("%w: booking=%s status=%s mode=%s hasLink=%t",
			ErrInvariant, b.ID, b.Status, b.ConsultationMode, b.MeetingLink != nil)
	}
	if b.AwaitingPayment && b.Status != domain.StatusPending {
		return fmt.Errorf("%w: booking=%s awaiting payment in status %s", ErrInvariant, b.ID, b.Status)
	}
	return nil
}

func cancellationReason(event domain.Event, reason *string) *string {
	if event == domain.EventNoShow && trimmed(reason) == nil {
		r := "no-show"
		return &r
	}
	return trimmed(reason)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

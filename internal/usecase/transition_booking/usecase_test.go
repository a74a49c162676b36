package transition_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/availability"
	"github.com/m04kA/SMC-ConsultationService/internal/conflictguard"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	policyRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/notifier"
	"github.com/m04kA/SMC-ConsultationService/internal/lifecycle"
	"github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
	"github.com/m04kA/SMC-ConsultationService/pkg/simpletxmanager"
)

// Понедельник 2026-10-19 08:00 по Москве
var testNow = time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC)

var (
	client   = domain.Actor{UserID: "client-1", Role: domain.RoleClient}
	attorney = domain.Actor{UserID: "attorney-1", Role: domain.RoleAttorney}
	stranger = domain.Actor{UserID: "attorney-2", Role: domain.RoleAttorney}
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifier.BookingEvent
}

func (n *recordingNotifier) Notify(e notifier.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	transition *UseCase
	create     *create_booking.UseCase
	bookings   *bookingRepo.MemoryRepository
	clock      *availability.FixedTimeProvider
	notifier   *recordingNotifier
}

func newFixture(t *testing.T, hourlyRate int64) *fixture {
	t.Helper()

	policies := policyRepo.NewMemoryRepository()
	require.NoError(t, policies.Put(domain.AttorneyAvailability{
		AttorneyID:         attorney.UserID,
		WorkingDays:        []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		DailyStart:         "09:00",
		DailyEnd:           "17:00",
		Timezone:           "Europe/Moscow",
		BufferMinutes:      15,
		MinDurationMinutes: 30,
		MaxDurationMinutes: 90,
		AdvanceBookingDays: 14,
		Fees:               domain.FeeSchedule{HourlyRate: decimal.NewFromInt(hourlyRate), Currency: "EUR"},
	}))

	clock := &availability.FixedTimeProvider{At: testNow}
	bookings := bookingRepo.NewMemoryRepository()
	machine := lifecycle.NewMachine(lifecycle.DefaultPolicy(), lifecycle.NewRoomLinkProvider("https://meet.example.com"), clock)
	tx := simpletxmanager.NewLocalManager(time.Second)
	n := &recordingNotifier{}

	create := create_booking.NewUseCase(
		bookings,
		policies,
		availability.NewResolverWithClock(clock),
		conflictguard.NewGuard(bookings, time.Second, nopLogger{}),
		machine,
		tx,
		n,
		nil,
		create_booking.Config{IdempotencyWindow: time.Hour},
		nopLogger{},
	).WithTimeProvider(clock)

	return &fixture{
		transition: NewUseCase(bookings, machine, tx, n, nil, nopLogger{}),
		create:     create,
		bookings:   bookings,
		clock:      clock,
		notifier:   n,
	}
}

func moscow(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return time.Date(2026, 10, day, hour, minute, 0, 0, loc)
}

func (f *fixture) book(t *testing.T, hour, minute int, bookingType, mode string) (*domain.Booking, error) {
	t.Helper()
	resp, err := f.create.Execute(context.Background(), &create_booking.Request{
		Requester:        client,
		AttorneyID:       attorney.UserID,
		Start:            moscow(t, 20, hour, minute),
		DurationMinutes:  60,
		Topic:            "Lease dispute",
		BookingType:      bookingType,
		ConsultationMode: mode,
	})
	if err != nil {
		return nil, err
	}
	return resp.Booking, nil
}

func (f *fixture) apply(actor domain.Actor, id, event string) (*domain.Booking, error) {
	return f.transition.Execute(context.Background(), &Request{Actor: actor, BookingID: id, Event: event})
}

func TestScenario_RejectFreesSlot(t *testing.T) {
	f := newFixture(t, 0)

	first, err := f.book(t, 10, 0, "consultation", "video")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, first.Status)

	_, err = f.book(t, 10, 30, "consultation", "video")
	require.ErrorIs(t, err, domain.ErrConflict)

	rejected, err := f.apply(attorney, first.ID, "reject")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)

	retry, err := f.book(t, 10, 30, "consultation", "video")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, retry.Status)
}

func TestCancelConfirmedFreesInterval(t *testing.T) {
	f := newFixture(t, 0)

	b, err := f.book(t, 12, 0, "consultation", "video")
	require.NoError(t, err)

	confirmed, err := f.apply(attorney, b.ID, "accept")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.MeetingLink)

	cancelled, err := f.apply(client, b.ID, "cancel")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.MeetingLink)
	require.NotNil(t, cancelled.CancelledAt)

	again, err := f.book(t, 12, 0, "consultation", "video")
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, again.ID)

	assert.Equal(t, []string{"booking.created", "booking.accept", "booking.cancel", "booking.created"}, f.notifier.types())
}

func TestExecute_Rejections(t *testing.T) {
	f := newFixture(t, 0)

	b, err := f.book(t, 10, 0, "consultation", "video")
	require.NoError(t, err)

	tests := []struct {
		name    string
		actor   domain.Actor
		id      string
		event   string
		wantErr error
	}{
		{name: "unknown event", actor: attorney, id: b.ID, event: "approve", wantErr: domain.ErrValidation},
		{name: "missing booking", actor: attorney, id: "nope", event: "accept", wantErr: domain.ErrNotFound},
		{name: "client cannot accept", actor: client, id: b.ID, event: "accept", wantErr: domain.ErrForbidden},
		{name: "other attorney cannot accept", actor: stranger, id: b.ID, event: "accept", wantErr: domain.ErrForbidden},
		{name: "attorney cannot cancel pending", actor: attorney, id: b.ID, event: "cancel", wantErr: domain.ErrForbidden},
		{name: "complete from pending", actor: attorney, id: b.ID, event: "complete", wantErr: domain.ErrInvalidTransition},
		{name: "no_show from pending", actor: attorney, id: b.ID, event: "no_show", wantErr: domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.apply(tt.actor, tt.id, tt.event)
			assert.ErrorIs(t, err, tt.wantErr)

			stored, getErr := f.bookings.GetByID(context.Background(), b.ID)
			require.NoError(t, getErr)
			assert.Equal(t, domain.StatusPending, stored.Status)
		})
	}
}

func TestExecute_Terminal(t *testing.T) {
	f := newFixture(t, 0)

	b, err := f.book(t, 10, 0, "consultation", "video")
	require.NoError(t, err)
	_, err = f.apply(client, b.ID, "cancel")
	require.NoError(t, err)

	for _, event := range []string{"accept", "reject", "cancel", "complete", "no_show"} {
		_, err := f.apply(attorney, b.ID, event)
		assert.Error(t, err, event)
	}
}

func TestExecute_CompleteAndNoShowGuards(t *testing.T) {
	f := newFixture(t, 0)

	b, err := f.book(t, 10, 0, "meeting", "video")
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, b.Status)

	_, err = f.apply(attorney, b.ID, "complete")
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "consultation has not ended yet", invalid.Reason)

	// Через 20 минут после окончания: грейс-период неявки (30 минут) еще идет
	f.clock.At = moscow(t, 20, 11, 20)
	_, err = f.apply(domain.SystemActor, b.ID, "no_show")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.clock.At = moscow(t, 20, 11, 31)
	noShow, err := f.apply(domain.SystemActor, b.ID, "no_show")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, noShow.Status)
	require.NotNil(t, noShow.CancellationReason)
	assert.Equal(t, "no-show", *noShow.CancellationReason)
}

func TestExecute_RejectReason(t *testing.T) {
	f := newFixture(t, 0)

	b, err := f.book(t, 10, 0, "consultation", "video")
	require.NoError(t, err)

	rejected, err := f.transition.Execute(context.Background(), &Request{
		Actor: attorney, BookingID: b.ID, Event: "reject", Reason: ptr.Ptr("  conflict of interest "),
	})
	require.NoError(t, err)
	require.NotNil(t, rejected.CancellationReason)
	assert.Equal(t, "conflict of interest", *rejected.CancellationReason)
}

func TestPayment(t *testing.T) {
	t.Run("accept blocked until paid", func(t *testing.T) {
		f := newFixture(t, 120)

		b, err := f.book(t, 10, 0, "consultation", "video")
		require.NoError(t, err)
		require.True(t, b.AwaitingPayment)
		assert.Equal(t, "120.00", b.Amount.StringFixed(2))
		assert.Equal(t, "eur", b.Currency)

		_, err = f.apply(attorney, b.ID, "accept")
		var invalid *domain.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "payment not cleared", invalid.Reason)

		paid, err := f.transition.MarkPaid(context.Background(), &PaymentRequest{BookingID: b.ID, Reference: "pi_1"})
		require.NoError(t, err)
		assert.True(t, paid.Changed)
		assert.Equal(t, domain.StatusPending, paid.Booking.Status)
		assert.False(t, paid.Booking.AwaitingPayment)

		confirmed, err := f.apply(attorney, b.ID, "accept")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
		require.NotNil(t, confirmed.PaymentReference)
		assert.Equal(t, "pi_1", *confirmed.PaymentReference)
	})

	t.Run("meeting auto confirmed by payment", func(t *testing.T) {
		f := newFixture(t, 120)

		b, err := f.book(t, 10, 0, "meeting", "audio")
		require.NoError(t, err)
		require.Equal(t, domain.StatusPending, b.Status)
		require.True(t, b.AwaitingPayment)

		paid, err := f.transition.MarkPaid(context.Background(), &PaymentRequest{BookingID: b.ID, Reference: "pi_2"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, paid.Booking.Status)
		require.NotNil(t, paid.Booking.MeetingLink)

		again, err := f.transition.MarkPaid(context.Background(), &PaymentRequest{BookingID: b.ID, Reference: "pi_2"})
		require.NoError(t, err)
		assert.False(t, again.Changed)
		assert.Equal(t, domain.StatusConfirmed, again.Booking.Status)

		assert.Equal(t, []string{"booking.created", "booking.paid"}, f.notifier.types())
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t, 120)
		_, err := f.transition.MarkPaid(context.Background(), &PaymentRequest{BookingID: "nope", Reference: "pi"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// staleRepository имитирует параллельный переход между чтением и записью
type staleRepository struct {
	*bookingRepo.MemoryRepository
}

func (r staleRepository) Update(ctx context.Context, next, prev *domain.Booking) error {
	concurrent := prev.Clone()
	concurrent.Status = domain.StatusCancelled
	if err := r.MemoryRepository.Update(ctx, concurrent, prev); err != nil {
		return err
	}
	return r.MemoryRepository.Update(ctx, next, prev)
}

func TestExecute_StaleIsInvalidTransition(t *testing.T) {
	f := newFixture(t, 0)

	b, err := f.book(t, 10, 0, "consultation", "video")
	require.NoError(t, err)

	machine := lifecycle.NewMachine(lifecycle.DefaultPolicy(), lifecycle.NewRoomLinkProvider("https://meet.example.com"), f.clock)
	uc := NewUseCase(staleRepository{f.bookings}, machine, simpletxmanager.NewLocalManager(time.Second), notifier.Nop{}, nil, nopLogger{})

	_, err = uc.Execute(context.Background(), &Request{Actor: attorney, BookingID: b.ID, Event: "accept"})
	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, reasonStale, invalid.Reason)
}

package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/availability"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	policyRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
)

// Понедельник 2026-10-19 08:00 по Москве
var testNow = time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func moscow(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return time.Date(2026, 10, day, hour, minute, 0, 0, loc)
}

func newUseCase(t *testing.T, maxHorizonDays int) (*UseCase, *bookingRepo.MemoryRepository) {
	t.Helper()

	policies := policyRepo.NewMemoryRepository()
	require.NoError(t, policies.Put(domain.AttorneyAvailability{
		AttorneyID:         "attorney-1",
		WorkingDays:        []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		DailyStart:         "09:00",
		DailyEnd:           "17:00",
		Timezone:           "Europe/Moscow",
		BufferMinutes:      15,
		MinDurationMinutes: 30,
		MaxDurationMinutes: 90,
		AdvanceBookingDays: 14,
	}))

	clock := &availability.FixedTimeProvider{At: testNow}
	bookings := bookingRepo.NewMemoryRepository()
	uc := NewUseCase(bookings, policies, availability.NewResolverWithClock(clock), maxHorizonDays, nopLogger{}).
		WithTimeProvider(clock)
	return uc, bookings
}

func TestExecute_SingleDay(t *testing.T) {
	uc, bookings := newUseCase(t, 0)

	require.NoError(t, bookings.Create(context.Background(), &domain.Booking{
		ID:          "b-1",
		AttorneyID:  "attorney-1",
		RequesterID: "client-1",
		Slot:        domain.NewTimeSlot(moscow(t, 20, 10, 0), 60),
		Status:      domain.StatusPending,
	}))

	resp, err := uc.Execute(context.Background(), &Request{
		AttorneyID:      "attorney-1",
		From:            ptr.Ptr(moscow(t, 20, 0, 0)),
		To:              ptr.Ptr(moscow(t, 21, 0, 0)),
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", resp.Timezone)
	assert.Equal(t, 60, resp.DurationMinutes)

	starts := make([]string, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		starts = append(starts, s.Start().In(moscow(t, 20, 0, 0).Location()).Format("15:04"))
	}
	assert.Contains(t, starts, "11:15")
	assert.Contains(t, starts, "16:00")
	assert.NotContains(t, starts, "09:00")
	assert.NotContains(t, starts, "09:45")
	assert.NotContains(t, starts, "10:00")
	assert.NotContains(t, starts, "10:30")
	assert.NotContains(t, starts, "11:00")
}

func TestExecute_ClipsToHorizon(t *testing.T) {
	uc, _ := newUseCase(t, 3)

	resp, err := uc.Execute(context.Background(), &Request{
		AttorneyID: "attorney-1",
		To:         ptr.Ptr(testNow.AddDate(0, 0, 30)),
	})
	require.NoError(t, err)
	assert.Equal(t, testNow, resp.From)
	assert.Equal(t, testNow.AddDate(0, 0, 3), resp.To)
	assert.Equal(t, 30, resp.DurationMinutes)
	require.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.True(t, s.Start().Before(resp.To))
	}
}

func TestExecute_BeyondHorizonIsEmpty(t *testing.T) {
	uc, _ := newUseCase(t, 0)

	resp, err := uc.Execute(context.Background(), &Request{
		AttorneyID: "attorney-1",
		From:       ptr.Ptr(testNow.AddDate(0, 0, 20)),
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
}

func TestExecute_Errors(t *testing.T) {
	uc, _ := newUseCase(t, 0)

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "no attorney", req: &Request{}, wantErr: domain.ErrValidation},
		{name: "unknown attorney", req: &Request{AttorneyID: "ghost"}, wantErr: domain.ErrNotFound},
		{name: "duration out of bounds", req: &Request{AttorneyID: "attorney-1", DurationMinutes: 120}, wantErr: domain.ErrValidation},
		{name: "duration overflows time.Duration", req: &Request{AttorneyID: "attorney-1", DurationMinutes: 30 + 1<<53}, wantErr: domain.ErrValidation},
		{
			name:    "inverted window",
			req:     &Request{AttorneyID: "attorney-1", From: ptr.Ptr(moscow(t, 22, 0, 0)), To: ptr.Ptr(moscow(t, 21, 0, 0))},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

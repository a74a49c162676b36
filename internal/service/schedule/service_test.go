package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	policyRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestService_GetAvailability(t *testing.T) {
	repo := policyRepo.NewMemoryRepository()
	require.NoError(t, repo.Put(domain.AttorneyAvailability{
		AttorneyID:         "att-1",
		WorkingDays:        []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		DailyStart:         "09:00",
		DailyEnd:           "17:00",
		Timezone:           "Europe/Berlin",
		BufferMinutes:      15,
		MinDurationMinutes: 30,
		MaxDurationMinutes: 120,
		AdvanceBookingDays: 14,
		Fees: domain.FeeSchedule{
			ConsultationFee: ptr.Ptr(decimal.RequireFromString("49.9")),
			HourlyRate:      decimal.NewFromInt(100),
			Currency:        "eur",
		},
		UpdatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}))

	s := NewService(repo, nopLogger{})

	t.Run("found", func(t *testing.T) {
		resp, err := s.GetAvailability(context.Background(), "att-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"monday", "wednesday", "friday"}, resp.WorkingDays)
		assert.Equal(t, "09:00", resp.DailyStart)
		assert.Equal(t, "17:00", resp.DailyEnd)
		assert.Equal(t, "Europe/Berlin", resp.Timezone)
		assert.Equal(t, 15, resp.BufferMinutes)
		assert.Equal(t, 30, resp.MinDuration)
		assert.Equal(t, 120, resp.MaxDuration)
		require.NotNil(t, resp.ConsultationFee)
		assert.Equal(t, "49.90", *resp.ConsultationFee)
		assert.Equal(t, "100.00", resp.HourlyRate)
		assert.Equal(t, "2026-10-01T12:00:00Z", resp.UpdatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetAvailability(context.Background(), "att-404")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, err, ErrAttorneyNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := s.GetAvailability(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

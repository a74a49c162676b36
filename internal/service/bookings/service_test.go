package bookings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var base = time.Date(2026, 10, 20, 6, 0, 0, 0, time.UTC)

func seed(t *testing.T) *bookingRepo.MemoryRepository {
	t.Helper()
	repo := bookingRepo.NewMemoryRepository()

	statuses := []domain.BookingStatus{
		domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled, domain.StatusPending, domain.StatusCompleted,
	}
	for i, status := range statuses {
		require.NoError(t, repo.Create(context.Background(), &domain.Booking{
			ID:               fmt.Sprintf("b-%d", i),
			AttorneyID:       "att-1",
			RequesterID:      fmt.Sprintf("client-%d", i%2),
			Slot:             domain.NewTimeSlot(base.Add(time.Duration(i)*2*time.Hour), 60),
			Status:           status,
			ConsultationMode: domain.ModeVideo,
			BookingType:      domain.TypeConsultation,
			Amount:           decimal.RequireFromString("99.5"),
			Currency:         "usd",
			Topic:            "topic",
		}))
	}
	return repo
}

func TestService_GetByID(t *testing.T) {
	s := NewService(seed(t), nopLogger{})
	ctx := context.Background()

	resp, err := s.GetByID(ctx, "b-0", domain.Actor{UserID: "client-0", Role: domain.RoleClient})
	require.NoError(t, err)
	assert.Equal(t, "b-0", resp.ID)
	assert.Equal(t, "99.50", resp.Amount)
	assert.Equal(t, "2026-10-20T06:00:00Z", resp.BookingDate)
	assert.Equal(t, 60, resp.Duration)
	assert.NotNil(t, resp.Documents)

	_, err = s.GetByID(ctx, "b-0", domain.Actor{UserID: "att-1", Role: domain.RoleAttorney})
	require.NoError(t, err)

	_, err = s.GetByID(ctx, "b-0", domain.Actor{UserID: "client-1", Role: domain.RoleClient})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = s.GetByID(ctx, "missing", domain.Actor{UserID: "client-0", Role: domain.RoleClient})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_List(t *testing.T) {
	s := NewService(seed(t), nopLogger{})
	ctx := context.Background()

	t.Run("attorney sees all own bookings in order", func(t *testing.T) {
		resp, err := s.List(ctx, &models.ListBookingsRequest{Actor: domain.Actor{UserID: "att-1", Role: domain.RoleAttorney}})
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 5)
		for i, b := range resp.Bookings {
			assert.Equal(t, fmt.Sprintf("b-%d", i), b.ID)
		}
		assert.Equal(t, models.Pagination{Page: 1, Limit: domain.DefaultPageLimit, Total: 5, TotalPages: 1}, resp.Pagination)
	})

	t.Run("client sees own requests", func(t *testing.T) {
		resp, err := s.List(ctx, &models.ListBookingsRequest{Actor: domain.Actor{UserID: "client-1", Role: domain.RoleClient}})
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 2)
		assert.Equal(t, "b-1", resp.Bookings[0].ID)
		assert.Equal(t, "b-3", resp.Bookings[1].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		resp, err := s.List(ctx, &models.ListBookingsRequest{
			Actor:  domain.Actor{UserID: "att-1", Role: domain.RoleAttorney},
			Status: ptr.Ptr("pending,confirmed"),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Pagination.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		resp, err := s.List(ctx, &models.ListBookingsRequest{
			Actor: domain.Actor{UserID: "att-1", Role: domain.RoleAttorney},
			Page:  2,
			Limit: 2,
		})
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 2)
		assert.Equal(t, "b-2", resp.Bookings[0].ID)
		assert.Equal(t, 3, resp.Pagination.TotalPages)
	})

	t.Run("time window", func(t *testing.T) {
		resp, err := s.List(ctx, &models.ListBookingsRequest{
			Actor: domain.Actor{UserID: "att-1", Role: domain.RoleAttorney},
			From:  ptr.Ptr(base.Add(90 * time.Minute)),
			To:    ptr.Ptr(base.Add(5 * time.Hour)),
		})
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 2)
		assert.Equal(t, "b-1", resp.Bookings[0].ID)
	})

	t.Run("page beyond maximum", func(t *testing.T) {
		_, err := s.List(ctx, &models.ListBookingsRequest{
			Actor: domain.Actor{UserID: "att-1", Role: domain.RoleAttorney},
			Page:  576460752303423489,
			Limit: 20,
		})
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "page", validation.Field)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := s.List(ctx, &models.ListBookingsRequest{
			Actor:  domain.Actor{UserID: "att-1", Role: domain.RoleAttorney},
			Status: ptr.Ptr("archived"),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

package noshow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/availability"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ConsultationService/internal/usecase/transition_booking"
)

var now = time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeTransitioner struct {
	mu       sync.Mutex
	requests []*transition_booking.Request
	failFor  map[string]error
}

func (f *fakeTransitioner) Execute(_ context.Context, req *transition_booking.Request) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err, ok := f.failFor[req.BookingID]; ok {
		return nil, err
	}
	return &domain.Booking{ID: req.BookingID, Status: domain.StatusCancelled}, nil
}

func seed(t *testing.T, repo *bookingRepo.MemoryRepository, id string, status domain.BookingStatus, start time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.Booking{
		ID:          id,
		AttorneyID:  "att-" + id,
		RequesterID: "client-1",
		Slot:        domain.NewTimeSlot(start, 60),
		Status:      status,
	}))
}

func TestSweeper_SweepOnce(t *testing.T) {
	repo := bookingRepo.NewMemoryRepository()
	// закончилось в 11:00, grace 30m истек
	seed(t, repo, "due", domain.StatusConfirmed, now.Add(-2*time.Hour))
	// закончилось в 11:45, grace еще не истек
	seed(t, repo, "fresh", domain.StatusConfirmed, now.Add(-75*time.Minute))
	// pending не трогаем
	seed(t, repo, "pending", domain.StatusPending, now.Add(-3*time.Hour))

	transitioner := &fakeTransitioner{}
	s := NewSweeper(repo, transitioner, time.Minute, 30*time.Minute, nopLogger{}).
		WithTimeProvider(&availability.FixedTimeProvider{At: now})

	closed, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	require.Len(t, transitioner.requests, 1)
	req := transitioner.requests[0]
	assert.Equal(t, "due", req.BookingID)
	assert.Equal(t, string(domain.EventNoShow), req.Event)
	assert.Equal(t, domain.SystemActor, req.Actor)
}

func TestSweeper_SkipsFailures(t *testing.T) {
	repo := bookingRepo.NewMemoryRepository()
	seed(t, repo, "a", domain.StatusConfirmed, now.Add(-5*time.Hour))
	seed(t, repo, "b", domain.StatusConfirmed, now.Add(-4*time.Hour))
	seed(t, repo, "c", domain.StatusConfirmed, now.Add(-3*time.Hour))

	transitioner := &fakeTransitioner{failFor: map[string]error{
		"a": &domain.InvalidTransitionError{From: domain.StatusCancelled, Event: domain.EventNoShow},
		"b": fmt.Errorf("%w: lock timeout", domain.ErrTransient),
	}}
	s := NewSweeper(repo, transitioner, time.Minute, 30*time.Minute, nopLogger{}).
		WithTimeProvider(&availability.FixedTimeProvider{At: now})

	closed, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Len(t, transitioner.requests, 3)
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	repo := bookingRepo.NewMemoryRepository()
	seed(t, repo, "due", domain.StatusConfirmed, now.Add(-2*time.Hour))

	transitioner := &fakeTransitioner{}
	s := NewSweeper(repo, transitioner, 5*time.Millisecond, 30*time.Minute, nopLogger{}).
		WithTimeProvider(&availability.FixedTimeProvider{At: now})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		transitioner.mu.Lock()
		defer transitioner.mu.Unlock()
		return len(transitioner.requests) > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

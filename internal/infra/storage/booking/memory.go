package booking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// MemoryRepository хранилище бронирований в памяти процесса (database.driver = "memory", тесты).
// Ограничения совпадают с PostgreSQL: активные интервалы адвоката не пересекаются,
// ключ идемпотентности уникален в пределах заявителя.
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
}

// NewMemoryRepository создает пустое хранилище
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bookings: make(map[string]*domain.Booking)}
}

func (r *MemoryRepository) Create(ctx context.Context, b *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: Create - %v", domain.ErrTransient, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.bookings {
		if b.IdempotencyKey != nil && existing.IdempotencyKey != nil &&
			existing.RequesterID == b.RequesterID && *existing.IdempotencyKey == *b.IdempotencyKey {
			return fmt.Errorf("%w: Create - requester=%s", ErrDuplicateIdempotencyKey, b.RequesterID)
		}
		if b.Status.IsActive() && existing.Status.IsActive() &&
			existing.AttorneyID == b.AttorneyID && existing.Slot.Overlaps(b.Slot, 0) {
			return fmt.Errorf("%w: Create - overlaps booking id=%s", ErrSlotOverlap, existing.ID)
		}
	}

	r.bookings[b.ID] = b.Clone()
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b.Clone(), nil
}

func (r *MemoryRepository) GetByIdempotencyKey(_ context.Context, requesterID, key string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.RequesterID == requesterID && b.IdempotencyKey != nil && *b.IdempotencyKey == key {
			return b.Clone(), nil
		}
	}
	return nil, ErrBookingNotFound
}

// LockAttorney в памяти не нужен: резервации одного адвоката сериализует ConflictGuard
func (r *MemoryRepository) LockAttorney(ctx context.Context, _ string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: LockAttorney - %v", domain.ErrTransient, err)
	}
	return nil
}

func (r *MemoryRepository) ListActiveInRange(_ context.Context, attorneyID string, from, to time.Time) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if b.AttorneyID != attorneyID || !b.Status.IsActive() {
			continue
		}
		if b.Slot.Start().Before(to) && b.Slot.End().After(from) {
			result = append(result, b.Clone())
		}
	}
	sortByStart(result)
	return result, nil
}

func (r *MemoryRepository) List(_ context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	filter.Normalize()

	r.mu.RLock()
	matched := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if matches(b, filter) {
			matched = append(matched, b.Clone())
		}
	}
	r.mu.RUnlock()

	sortByStart(matched)

	total := len(matched)
	offset := filter.Offset()
	if offset >= total {
		return []*domain.Booking{}, total, nil
	}
	end := min(offset+filter.Limit, total)
	return matched[offset:end], total, nil
}

func (r *MemoryRepository) ListDueForNoShow(_ context.Context, endedBefore time.Time, limit int) ([]*domain.Booking, error) {
	r.mu.RLock()
	due := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if b.Status == domain.StatusConfirmed && !b.Slot.End().After(endedBefore) {
			due = append(due, b.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(due, func(a, b *domain.Booking) int {
		return cmp.Or(a.Slot.End().Compare(b.Slot.End()), cmp.Compare(a.ID, b.ID))
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *MemoryRepository) Update(ctx context.Context, next, prev *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: Update - %v", domain.ErrTransient, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.bookings[next.ID]
	if !ok {
		return ErrBookingNotFound
	}
	if current.Status != prev.Status || current.AwaitingPayment != prev.AwaitingPayment {
		return fmt.Errorf("%w: Update - booking id=%s", ErrStaleBooking, next.ID)
	}

	r.bookings[next.ID] = next.Clone()
	return nil
}

func matches(b *domain.Booking, f domain.BookingFilter) bool {
	if f.AttorneyID != nil && b.AttorneyID != *f.AttorneyID {
		return false
	}
	if f.RequesterID != nil && b.RequesterID != *f.RequesterID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, b.Status) {
		return false
	}
	if f.From != nil && !b.Slot.End().After(*f.From) {
		return false
	}
	if f.To != nil && !b.Slot.Start().Before(*f.To) {
		return false
	}
	return true
}

func sortByStart(bookings []*domain.Booking) {
	slices.SortFunc(bookings, func(a, b *domain.Booking) int {
		return cmp.Or(a.Slot.Start().Compare(b.Slot.Start()), cmp.Compare(a.ID, b.ID))
	})
}

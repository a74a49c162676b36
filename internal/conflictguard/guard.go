package conflictguard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

const defaultAcquireTimeout = 2 * time.Second

// Guard гарантирует, что для пересекающихся слотов одного адвоката успешна
// не более чем одна резервация одновременно
type Guard struct {
	store          BookingStore
	locks          *keyedMutex
	acquireTimeout time.Duration
	logger         Logger
}

// NewGuard создает ConflictGuard. acquireTimeout ограничивает ожидание блокировки адвоката
func NewGuard(store BookingStore, acquireTimeout time.Duration, logger Logger) *Guard {
	if acquireTimeout <= 0 {
		acquireTimeout = defaultAcquireTimeout
	}
	return &Guard{
		store:          store,
		locks:          newKeyedMutex(),
		acquireTimeout: acquireTimeout,
		logger:         logger,
	}
}

// Reservation захват слота, предшествующий созданию бронирования.
// Держит блокировку адвоката, пока не вызван Release: бронирование должно быть
// записано (и транзакция зафиксирована) до освобождения.
type Reservation struct {
	AttorneyID string
	Slot       domain.TimeSlot

	once     sync.Once
	released chan struct{}
	unlock   func()
}

// Release освобождает резервацию. Повторные вызовы ничего не делают
func (r *Reservation) Release() {
	r.once.Do(func() {
		close(r.released)
		r.unlock()
	})
}

// Active возвращает true, пока резервация не освобождена
func (r *Reservation) Active() bool {
	select {
	case <-r.released:
		return false
	default:
		return true
	}
}

// TryReserve резервирует слот адвоката.
// Вызывается внутри транзакции хранилища: блокировка в БД держится до фиксации транзакции,
// блокировка в процессе до Release.
//
// Ошибки:
//   - *domain.ConflictError, если слот (с учетом буфера) пересекается с активным бронированием
//   - domain.ErrTransient, если блокировку не удалось получить за отведенное время
func (g *Guard) TryReserve(ctx context.Context, attorneyID string, slot domain.TimeSlot, buffer time.Duration) (*Reservation, error) {
	lockCtx, cancel := context.WithTimeout(ctx, g.acquireTimeout)
	defer cancel()

	if err := g.locks.Lock(lockCtx, attorneyID); err != nil {
		g.logger.Warn("TryReserve: attorney=%s lock wait aborted: %v", attorneyID, err)
		return nil, fmt.Errorf("%w: TryReserve - acquire attorney lock: %v", domain.ErrTransient, err)
	}

	reservation := &Reservation{
		AttorneyID: attorneyID,
		Slot:       slot,
		released:   make(chan struct{}),
		unlock:     func() { g.locks.Unlock(attorneyID) },
	}

	if err := g.check(ctx, attorneyID, slot, buffer); err != nil {
		reservation.Release()
		return nil, err
	}

	return reservation, nil
}

func (g *Guard) check(ctx context.Context, attorneyID string, slot domain.TimeSlot, buffer time.Duration) error {
	if err := g.store.LockAttorney(ctx, attorneyID); err != nil {
		g.logger.Error("TryReserve: attorney=%s storage lock failed: %v", attorneyID, err)
		return wrapStoreError("lock attorney", err)
	}

	existing, err := g.store.ListActiveInRange(ctx, attorneyID, slot.Start().Add(-buffer), slot.End().Add(buffer))
	if err != nil {
		g.logger.Error("TryReserve: attorney=%s failed to list active bookings: %v", attorneyID, err)
		return wrapStoreError("list active bookings", err)
	}

	for _, b := range existing {
		if b.AttorneyID != attorneyID || !b.Status.IsActive() {
			continue
		}
		if slot.Overlaps(b.Slot, buffer) {
			g.logger.Warn("TryReserve: attorney=%s slot %s overlaps booking id=%s",
				attorneyID, slot.Start().Format(time.RFC3339), b.ID)
			return &domain.ConflictError{BookingID: b.ID}
		}
	}
	return nil
}

// wrapStoreError сохраняет признак повторяемости ошибки хранилища
func wrapStoreError(op string, err error) error {
	if errors.Is(err, domain.ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: TryReserve - %s: %v", domain.ErrTransient, op, err)
	}
	return fmt.Errorf("TryReserve - %s: %w", op, err)
}

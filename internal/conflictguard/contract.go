package conflictguard

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// BookingStore хранилище, через которое проверяются пересечения
type BookingStore interface {
	// LockAttorney берет блокировку на набор бронирований адвоката до конца текущей транзакции
	LockAttorney(ctx context.Context, attorneyID string) error
	// ListActiveInRange активные бронирования адвоката, пересекающиеся с [from, to)
	ListActiveInRange(ctx context.Context, attorneyID string, from, to time.Time) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

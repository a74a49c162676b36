package noshow

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/usecase/transition_booking"
)

// BookingRepository источник подтвержденных бронирований с истекшим окном
type BookingRepository interface {
	ListDueForNoShow(ctx context.Context, endedBefore time.Time, limit int) ([]*domain.Booking, error)
}

// Transitioner применяет событие к бронированию
type Transitioner interface {
	Execute(ctx context.Context, req *transition_booking.Request) (*domain.Booking, error)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

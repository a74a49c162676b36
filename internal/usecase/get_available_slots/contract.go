package get_available_slots

import (
	"context"
	"iter"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/availability"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListActiveInRange активные бронирования адвоката, пересекающие [from, to)
	ListActiveInRange(ctx context.Context, attorneyID string, from, to time.Time) ([]*domain.Booking, error)
}

// PolicyRepository интерфейс репозитория политик расписания адвокатов
type PolicyRepository interface {
	GetByAttorneyID(ctx context.Context, attorneyID string) (*domain.AttorneyAvailability, error)
}

// SlotResolver строит свободные слоты по политике и занятым интервалам
type SlotResolver interface {
	ResolveSlots(
		policy *domain.AttorneyAvailability,
		existing []*domain.Booking,
		horizon availability.Horizon,
		durationMinutes int,
	) (iter.Seq[domain.TimeSlot], error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

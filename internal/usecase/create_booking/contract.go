package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/conflictguard"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/notifier"
	"github.com/m04kA/SMC-ConsultationService/internal/lifecycle"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByIdempotencyKey(ctx context.Context, requesterID, key string) (*domain.Booking, error)
	ListActiveInRange(ctx context.Context, attorneyID string, from, to time.Time) ([]*domain.Booking, error)
}

// PolicyRepository интерфейс репозитория политик расписания адвокатов
type PolicyRepository interface {
	GetByAttorneyID(ctx context.Context, attorneyID string) (*domain.AttorneyAvailability, error)
}

// SlotChecker проверяет допустимость слота по политике адвоката
type SlotChecker interface {
	CheckSlot(candidate domain.TimeSlot, policy *domain.AttorneyAvailability) error
}

// SlotGuard резервирует слот адвоката
type SlotGuard interface {
	TryReserve(ctx context.Context, attorneyID string, slot domain.TimeSlot, buffer time.Duration) (*conflictguard.Reservation, error)
}

// StateMachine создает бронирование в начальном состоянии
type StateMachine interface {
	Materialize(res *conflictguard.Reservation, draft lifecycle.Draft, payment lifecycle.Payment) (*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправляет уведомления о бронированиях
type Notifier interface {
	Notify(event notifier.BookingEvent)
}

// Metrics счетчики результатов создания
type Metrics interface {
	RecordCreateOutcome(outcome string)
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

package transition_booking

import (
	"context"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, next, prev *domain.Booking) error
}

// StateMachine конечный автомат бронирования
type StateMachine interface {
	Apply(b *domain.Booking, event domain.Event, reason *string) (*domain.Booking, error)
	MarkPaid(b *domain.Booking, reference string) (*domain.Booking, bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправляет уведомления о бронированиях
type Notifier interface {
	Notify(event notifier.BookingEvent)
}

// Metrics счетчики переходов
type Metrics interface {
	RecordTransition(event, to string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

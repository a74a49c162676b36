package transition_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/notifier"
	"github.com/m04kA/SMC-ConsultationService/internal/lifecycle"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// UseCase use case переходов жизненного цикла бронирования
type UseCase struct {
	bookingRepo BookingRepository
	machine     StateMachine
	txManager   TransactionManager
	notifier    Notifier
	metrics     Metrics
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	machine StateMachine,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		machine:     machine,
		txManager:   txManager,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute применяет событие к бронированию от имени actor.
// Чтение, проверка прав, переход и запись выполняются в одной транзакции;
// при ошибке бронирование не меняется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	uc.logger.Info("TransitionBooking: booking=%s event=%s actor=%s/%s",
		req.BookingID, req.Event, req.Actor.Role, req.Actor.UserID)

	event, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("TransitionBooking: validation failed: %v", err)
		return nil, err
	}

	var result *domain.Booking
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := uc.load(txCtx, req.BookingID)
		if err != nil {
			return err
		}

		if err := lifecycle.Authorize(current, event, req.Actor); err != nil {
			return err
		}

		next, err := uc.machine.Apply(current, event, req.Reason)
		if err != nil {
			return err
		}

		if err := uc.bookingRepo.Update(txCtx, next, current); err != nil {
			return uc.mapUpdateError(current, event, err)
		}

		result = next
		return nil
	})
	if err != nil {
		return nil, uc.logError("TransitionBooking", req.BookingID, err)
	}

	uc.logger.Info("TransitionBooking: booking=%s moved to %s by %s", result.ID, result.Status, event)
	if uc.metrics != nil {
		uc.metrics.RecordTransition(string(event), string(result.Status))
	}
	uc.notifier.Notify(notifier.NewBookingEvent(notifier.TransitionEventType(event), result))
	return result, nil
}

// MarkPaid учитывает сигнал об успешной оплате. Повторный сигнал ничего не меняет.
func (uc *UseCase) MarkPaid(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	uc.logger.Info("MarkPaid: booking=%s reference=%s", req.BookingID, req.Reference)

	if strings.TrimSpace(req.BookingID) == "" {
		return nil, domain.NewValidationError("bookingId", "is required")
	}
	if strings.TrimSpace(req.Reference) == "" {
		return nil, domain.NewValidationError("paymentReference", "is required")
	}

	var resp PaymentResponse
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := uc.load(txCtx, req.BookingID)
		if err != nil {
			return err
		}

		next, changed, err := uc.machine.MarkPaid(current, req.Reference)
		if err != nil {
			return err
		}
		if changed {
			if err := uc.bookingRepo.Update(txCtx, next, current); err != nil {
				return uc.mapUpdateError(current, eventPaymentPaid, err)
			}
		}

		resp = PaymentResponse{Booking: next, Changed: changed}
		return nil
	})
	if err != nil {
		return nil, uc.logError("MarkPaid", req.BookingID, err)
	}

	if !resp.Changed {
		uc.logger.Info("MarkPaid: booking=%s already paid", req.BookingID)
		return &resp, nil
	}

	uc.logger.Info("MarkPaid: booking=%s paid, status=%s", resp.Booking.ID, resp.Booking.Status)
	if uc.metrics != nil {
		uc.metrics.RecordTransition(eventPaymentPaid, string(resp.Booking.Status))
	}
	uc.notifier.Notify(notifier.NewBookingEvent(notifier.EventPaid, resp.Booking))
	return &resp, nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := uc.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: %w: id=%s", domain.ErrNotFound, ErrBookingNotFound, id)
		}
		return nil, err
	}
	return b, nil
}

// mapUpdateError: конкурентное изменение означает, что состояние вызывающего устарело
func (uc *UseCase) mapUpdateError(current *domain.Booking, event domain.Event, err error) error {
	if errors.Is(err, bookingRepo.ErrStaleBooking) {
		return &domain.InvalidTransitionError{From: current.Status, Event: event, Reason: reasonStale}
	}
	return err
}

// logError логирует ошибку и приводит ее к одной из категорий domain
func (uc *UseCase) logError(op, bookingID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		uc.logger.Warn("%s: booking=%s not found", op, bookingID)
		return err
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrValidation):
		uc.logger.Warn("%s: booking=%s rejected: %v", op, bookingID, err)
		return err
	case errors.Is(err, domain.ErrTransient):
		uc.logger.Warn("%s: booking=%s transient failure: %v", op, bookingID, err)
		return err
	case txmanager.IsRetryable(err):
		uc.logger.Warn("%s: booking=%s retryable failure: %v", op, bookingID, err)
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	default:
		uc.logger.Error("%s: booking=%s failed: %v", op, bookingID, err)
		return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
	}
}

package create_booking

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/conflictguard"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	policyRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/notifier"
	"github.com/m04kA/SMC-ConsultationService/internal/lifecycle"
	"github.com/m04kA/SMC-ConsultationService/internal/payment"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	policyRepo   PolicyRepository
	slots        SlotChecker
	guard        SlotGuard
	machine      StateMachine
	txManager    TransactionManager
	notifier     Notifier
	metrics      Metrics
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	policyRepo PolicyRepository,
	slots SlotChecker,
	guard SlotGuard,
	machine StateMachine,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		policyRepo:   policyRepo,
		slots:        slots,
		guard:        guard,
		machine:      machine,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования.
// Резервация слота, расчет оплаты и запись бронирования выполняются одной
// сериализуемой транзакцией: при любой ошибке данные не меняются.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: requester=%s, attorney=%s, start=%s, duration=%d, type=%s, mode=%s",
		req.Requester.UserID, req.AttorneyID, req.Start.Format(time.RFC3339), req.DurationMinutes,
		req.BookingType, req.ConsultationMode)

	resp, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.RecordCreateOutcome(outcomeOf(resp, err))
	}
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	bookingType, mode, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Политика расписания адвоката
	policy, err := uc.policyRepo.GetByAttorneyID(ctx, req.AttorneyID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrAvailabilityNotFound) {
			uc.logger.Warn("CreateBooking: attorney=%s has no availability policy", req.AttorneyID)
			return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, ErrAttorneyNotFound)
		}
		uc.logger.Error("CreateBooking: failed to get policy for attorney=%s: %v", req.AttorneyID, err)
		return nil, uc.internal("failed to get availability policy", err)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = policy.MinDurationMinutes
	}
	// Длительность проверяется до перевода в time.Duration
	if !policy.AcceptsDuration(duration) {
		uc.logger.Warn("CreateBooking: duration=%d out of bounds for attorney=%s", duration, req.AttorneyID)
		return nil, durationError(policy)
	}

	// 3. Повтор запроса с тем же ключом возвращает первое бронирование
	if req.IdempotencyKey != nil {
		if resp, err := uc.replay(ctx, req, duration); resp != nil || err != nil {
			return resp, err
		}
	}

	// 4. Допустимость слота по политике
	slot := domain.NewTimeSlot(req.Start, duration)
	if err := uc.slots.CheckSlot(slot, policy); err != nil {
		uc.logger.Warn("CreateBooking: slot %s rejected for attorney=%s: %v",
			req.Start.Format(time.RFC3339), req.AttorneyID, err)
		return nil, err
	}

	draft := lifecycle.Draft{
		RequesterID:      req.Requester.UserID,
		ConsultationMode: mode,
		BookingType:      bookingType,
		Topic:            req.Topic,
		Description:      req.Description,
		Documents:        req.Documents,
		IdempotencyKey:   req.IdempotencyKey,
	}

	fees := policy.Fees
	fees.Currency = cmp.Or(fees.Currency, uc.cfg.DefaultCurrency)

	var (
		created     *domain.Booking
		reservation *conflictguard.Reservation
	)
	// Блокировка адвоката держится до фиксации транзакции
	defer func() {
		if reservation != nil {
			reservation.Release()
		}
	}()

	// 5. Резервация, оплата и материализация в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, err := uc.guard.TryReserve(txCtx, req.AttorneyID, slot, policy.Buffer())
		if err != nil {
			return err
		}
		reservation = res

		decision, err := payment.Evaluate(&domain.Booking{
			Slot:             slot,
			ConsultationMode: mode,
			BookingType:      bookingType,
		}, fees)
		if err != nil {
			return uc.internal("failed to evaluate payment", err)
		}

		booking, err := uc.machine.Materialize(res, draft, lifecycle.Payment{
			RequiresPayment: decision.RequiresPayment,
			Cleared:         decision.Cleared,
			Amount:          decision.Amount,
			Currency:        decision.Currency,
		})
		if err != nil {
			return uc.internal("failed to materialize booking", err)
		}

		if err := uc.bookingRepo.Create(txCtx, booking); err != nil {
			return err
		}

		created = booking
		return nil
	})

	if err != nil {
		return uc.handleCreateError(ctx, req, slot, policy.Buffer(), err)
	}

	uc.logger.Info("CreateBooking: created booking id=%s status=%s awaitingPayment=%t amount=%s %s",
		created.ID, created.Status, created.AwaitingPayment, created.Amount.StringFixed(2), created.Currency)

	uc.notifier.Notify(notifier.NewBookingEvent(notifier.EventCreated, created))
	return &Response{Booking: created}, nil
}

// replay ищет бронирование по ключу идемпотентности.
// Возвращает nil, nil, если ключ еще не использовался.
func (uc *UseCase) replay(ctx context.Context, req *Request, duration int) (*Response, error) {
	existing, err := uc.bookingRepo.GetByIdempotencyKey(ctx, req.Requester.UserID, *req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, nil
		}
		uc.logger.Error("CreateBooking: failed to look up idempotency key for requester=%s: %v",
			req.Requester.UserID, err)
		if errors.Is(err, domain.ErrTransient) {
			return nil, err
		}
		return nil, uc.internal("failed to look up idempotency key", err)
	}

	if uc.timeProvider.Now().Sub(existing.CreatedAt) > uc.cfg.IdempotencyWindow {
		uc.logger.Warn("CreateBooking: idempotency key of booking id=%s expired", existing.ID)
		return nil, domain.NewValidationError("idempotencyKey", "key was already used and has expired")
	}
	if !sameRequest(existing, req, duration) {
		uc.logger.Warn("CreateBooking: idempotency key of booking id=%s reused for a different slot", existing.ID)
		return nil, domain.NewValidationError("idempotencyKey", "key was already used for a different request")
	}

	uc.logger.Info("CreateBooking: replaying booking id=%s for requester=%s", existing.ID, req.Requester.UserID)
	return &Response{Booking: existing, Replayed: true}, nil
}

// handleCreateError переводит ошибку транзакции в ошибку для вызывающего.
// Проигравший гонку с тем же ключом идемпотентности получает бронирование победителя.
func (uc *UseCase) handleCreateError(ctx context.Context, req *Request, slot domain.TimeSlot, buffer time.Duration, err error) (*Response, error) {
	var conflict *domain.ConflictError
	overlap := errors.As(err, &conflict) || errors.Is(err, bookingRepo.ErrSlotOverlap)
	duplicate := errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey)

	if (overlap || duplicate) && req.IdempotencyKey != nil {
		if resp, replayErr := uc.replay(ctx, req, slot.DurationMinutes()); resp != nil || replayErr != nil {
			return resp, replayErr
		}
	}

	switch {
	case conflict != nil:
		uc.logger.Warn("CreateBooking: slot of attorney=%s conflicts with booking id=%s", req.AttorneyID, conflict.BookingID)
		return nil, conflict
	case overlap:
		uc.logger.Warn("CreateBooking: storage rejected overlapping interval for attorney=%s: %v", req.AttorneyID, err)
		return nil, uc.storageConflict(ctx, req.AttorneyID, slot, buffer)
	case duplicate:
		uc.logger.Warn("CreateBooking: idempotency key race for requester=%s: %v", req.Requester.UserID, err)
		return nil, fmt.Errorf("%w: idempotency key is being used by a concurrent request", domain.ErrTransient)
	case errors.Is(err, domain.ErrTransient):
		uc.logger.Warn("CreateBooking: transient failure for attorney=%s: %v", req.AttorneyID, err)
		return nil, err
	case txmanager.IsRetryable(err):
		uc.logger.Warn("CreateBooking: retryable storage failure for attorney=%s: %v", req.AttorneyID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateBooking: %v", err)
		return nil, err
	default:
		uc.logger.Error("CreateBooking: failed to create booking: %v", err)
		return nil, uc.internal("failed to create booking", err)
	}
}

// storageConflict ищет бронирование, из-за которого хранилище отклонило интервал
func (uc *UseCase) storageConflict(ctx context.Context, attorneyID string, slot domain.TimeSlot, buffer time.Duration) *domain.ConflictError {
	active, err := uc.bookingRepo.ListActiveInRange(ctx, attorneyID, slot.Start().Add(-buffer), slot.End().Add(buffer))
	if err != nil {
		uc.logger.Error("CreateBooking: failed to find booking overlapping slot of attorney=%s: %v", attorneyID, err)
		return &domain.ConflictError{}
	}
	for _, b := range active {
		if b.Slot.Overlaps(slot, buffer) {
			return &domain.ConflictError{BookingID: b.ID}
		}
	}
	return &domain.ConflictError{}
}

func (uc *UseCase) internal(msg string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, msg, err)
}

func outcomeOf(resp *Response, err error) string {
	switch {
	case err == nil && resp.Replayed:
		return outcomeReplayed
	case err == nil:
		return outcomeCreated
	case errors.Is(err, domain.ErrConflict):
		return outcomeConflict
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		return outcomeInvalid
	case errors.Is(err, domain.ErrTransient):
		return outcomeTransient
	default:
		return outcomeFailed
	}
}

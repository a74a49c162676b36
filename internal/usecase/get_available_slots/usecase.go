package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/availability"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	policyRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/policy"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	bookingRepo    BookingRepository
	policyRepo     PolicyRepository
	resolver       SlotResolver
	maxHorizonDays int
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	policyRepo PolicyRepository,
	resolver SlotResolver,
	maxHorizonDays int,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		policyRepo:     policyRepo,
		resolver:       resolver,
		maxHorizonDays: maxHorizonDays,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: attorney=%s, duration=%d", req.AttorneyID, req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Политика расписания адвоката
	policy, err := uc.policyRepo.GetByAttorneyID(ctx, req.AttorneyID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrAvailabilityNotFound) {
			uc.logger.Warn("GetAvailableSlots: attorney=%s has no availability policy", req.AttorneyID)
			return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, ErrAttorneyNotFound)
		}
		uc.logger.Error("GetAvailableSlots: failed to get policy for attorney=%s: %v", req.AttorneyID, err)
		return nil, fmt.Errorf("%w: failed to get availability policy: %v", ErrInternal, err)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = policy.MinDurationMinutes
	}
	if !policy.AcceptsDuration(duration) {
		uc.logger.Warn("GetAvailableSlots: duration=%d out of bounds for attorney=%s", duration, req.AttorneyID)
		return nil, domain.NewValidationError("duration",
			fmt.Sprintf("must be within [%d, %d] minutes", policy.MinDurationMinutes, policy.MaxDurationMinutes))
	}

	// 3. Окно поиска, ограниченное горизонтом бронирования
	now := uc.timeProvider.Now()
	from, to := window(req, policy, now, uc.maxHorizonDays)

	response := &Response{
		AttorneyID:      policy.AttorneyID,
		Timezone:        policy.Timezone,
		DurationMinutes: duration,
		From:            from,
		To:              to,
		Slots:           []domain.TimeSlot{},
	}
	if !from.Before(to) {
		uc.logger.Info("GetAvailableSlots: window for attorney=%s is beyond the booking horizon", req.AttorneyID)
		return response, nil
	}

	// 4. Занятые интервалы с запасом на буфер и длительность слота
	margin := policy.Buffer() + time.Duration(duration)*time.Minute
	bookings, err := uc.bookingRepo.ListActiveInRange(ctx, req.AttorneyID, from.Add(-margin), to.Add(margin))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings for attorney=%s: %v", req.AttorneyID, err)
		if errors.Is(err, domain.ErrTransient) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 5. Свободные слоты
	slots, err := uc.resolver.ResolveSlots(policy, bookings, availability.Horizon{From: from, To: to}, duration)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: attorney=%s rejected request: %v", req.AttorneyID, err)
		return nil, err
	}
	response.Slots = slices.AppendSeq(response.Slots, slots)

	uc.logger.Info("GetAvailableSlots: generated %d slots for attorney=%s between %s and %s",
		len(response.Slots), req.AttorneyID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	return response, nil
}

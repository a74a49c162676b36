package availability

import (
	"fmt"
	"iter"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Resolver превращает политику адвоката в набор слотов, доступных для бронирования
type Resolver struct {
	clock TimeProvider
}

// NewResolver создает резолвер с реальным временем
func NewResolver() *Resolver {
	return &Resolver{clock: &RealTimeProvider{}}
}

// NewResolverWithClock создает резолвер с заданным источником времени (для тестов)
func NewResolverWithClock(clock TimeProvider) *Resolver {
	return &Resolver{clock: clock}
}

// Horizon интервал [From, To), внутри которого ищутся начала слотов.
// Обходятся все календарные дни от дня From до дня To включительно (в зоне адвоката),
// слот попадает в выдачу, если From <= start < To.
type Horizon struct {
	From time.Time
	To   time.Time
}

// ResolveSlots возвращает ленивую конечную последовательность свободных слотов длительностью
// durationMinutes (0 = минимальная длительность политики). Последовательность можно обходить
// повторно: момент "сейчас" фиксируется при вызове.
//
// Длительность вне [min, max] и некорректный горизонт возвращают ValidationError
// до начала генерации.
func (r *Resolver) ResolveSlots(
	policy *domain.AttorneyAvailability,
	existing []*domain.Booking,
	horizon Horizon,
	durationMinutes int,
) (iter.Seq[domain.TimeSlot], error) {
	if durationMinutes == 0 {
		durationMinutes = policy.MinDurationMinutes
	}
	if err := checkDuration(policy, durationMinutes); err != nil {
		return nil, err
	}
	if !horizon.From.Before(horizon.To) {
		return nil, domain.NewValidationError("horizon", "from must be before to")
	}
	loc, err := policy.Location()
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	busy := activeSlots(policy.AttorneyID, existing)
	buffer := policy.Buffer()

	return func(yield func(domain.TimeSlot) bool) {
		for candidate := range candidates(policy, loc, durationMinutes, horizon) {
			if checkSlot(candidate, policy, loc, now) != nil {
				continue
			}
			if overlapsAny(candidate, busy, buffer) {
				continue
			}
			if !yield(candidate) {
				return
			}
		}
	}, nil
}

// IsSlotLegal проверяет выбранный клиентом слот по тому же предикату, что и ResolveSlots,
// без перебора всего горизонта. Пересечения с бронированиями проверяет ConflictGuard.
func (r *Resolver) IsSlotLegal(candidate domain.TimeSlot, policy *domain.AttorneyAvailability) bool {
	return r.CheckSlot(candidate, policy) == nil
}

// CheckSlot как IsSlotLegal, но возвращает ValidationError с причиной отказа
func (r *Resolver) CheckSlot(candidate domain.TimeSlot, policy *domain.AttorneyAvailability) error {
	loc, err := policy.Location()
	if err != nil {
		return err
	}
	return checkSlot(candidate, policy, loc, r.clock.Now())
}

// Candidates перечисляет все слоты сетки в горизонте без учета текущего времени и бронирований
func Candidates(policy *domain.AttorneyAvailability, durationMinutes int, horizon Horizon) (iter.Seq[domain.TimeSlot], error) {
	loc, err := policy.Location()
	if err != nil {
		return nil, err
	}
	return candidates(policy, loc, durationMinutes, horizon), nil
}

// candidates перебирает рабочие дни горизонта в часовом поясе адвоката и для каждого дня
// выдает слоты от начала рабочего дня с шагом step, пока слот помещается до конца дня
func candidates(
	policy *domain.AttorneyAvailability,
	loc *time.Location,
	durationMinutes int,
	horizon Horizon,
) iter.Seq[domain.TimeSlot] {
	step := gridStep(policy, durationMinutes)
	duration := time.Duration(durationMinutes) * time.Minute

	return func(yield func(domain.TimeSlot) bool) {
		if step <= 0 {
			return
		}
		first := horizon.From.In(loc)
		last := horizon.To.In(loc)
		day := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)

		for !day.After(last) {
			if policy.WorksOn(day.Weekday()) {
				dayStart, errStart := policy.DailyStart.On(day, loc)
				dayEnd, errEnd := policy.DailyEnd.On(day, loc)
				if errStart != nil || errEnd != nil {
					return
				}

				for start := dayStart; !start.Add(duration).After(dayEnd); start = start.Add(step) {
					if start.Before(horizon.From) {
						continue
					}
					if !start.Before(horizon.To) {
						return
					}
					if !yield(domain.NewTimeSlot(start, durationMinutes)) {
						return
					}
				}
			}
			day = day.AddDate(0, 0, 1)
		}
	}
}

// checkSlot единый предикат допустимости слота:
// длительность в границах политики, рабочий день, попадание в сетку и рабочие часы,
// не в прошлом и не дальше горизонта бронирования
func checkSlot(candidate domain.TimeSlot, policy *domain.AttorneyAvailability, loc *time.Location, now time.Time) error {
	if err := checkDuration(policy, candidate.DurationMinutes()); err != nil {
		return err
	}

	start := candidate.Start()
	if start.Before(now) {
		return domain.NewValidationError("bookingDate", "must not be in the past")
	}
	if start.After(now.Add(policy.Horizon())) {
		return domain.NewValidationError("bookingDate",
			fmt.Sprintf("can only book %d days in advance", policy.AdvanceBookingDays))
	}

	local := start.In(loc)
	if !policy.WorksOn(local.Weekday()) {
		return domain.NewValidationError("bookingDate",
			fmt.Sprintf("attorney does not work on %s", local.Weekday()))
	}

	dayStart, err := policy.DailyStart.On(local, loc)
	if err != nil {
		return domain.NewValidationError("dailyStart", err.Error())
	}
	dayEnd, err := policy.DailyEnd.On(local, loc)
	if err != nil {
		return domain.NewValidationError("dailyEnd", err.Error())
	}
	if start.Before(dayStart) || candidate.End().After(dayEnd) {
		return domain.NewValidationError("bookingDate",
			fmt.Sprintf("must be within working hours %s-%s %s", policy.DailyStart, policy.DailyEnd, policy.Timezone))
	}

	step := gridStep(policy, candidate.DurationMinutes())
	if start.Sub(dayStart)%step != 0 {
		return domain.NewValidationError("bookingDate",
			fmt.Sprintf("must start at %s plus a multiple of %d minutes", policy.DailyStart, int(step/time.Minute)))
	}

	return nil
}

func checkDuration(policy *domain.AttorneyAvailability, durationMinutes int) error {
	if !policy.AcceptsDuration(durationMinutes) {
		return domain.NewValidationError("duration",
			fmt.Sprintf("must be within [%d, %d] minutes", policy.MinDurationMinutes, policy.MaxDurationMinutes))
	}
	return nil
}

// gridStep шаг сетки: буфер, а при нулевом буфере длительность слота
func gridStep(policy *domain.AttorneyAvailability, durationMinutes int) time.Duration {
	if policy.BufferMinutes > 0 {
		return policy.Buffer()
	}
	return time.Duration(durationMinutes) * time.Minute
}

// activeSlots интервалы активных бронирований адвоката
func activeSlots(attorneyID string, bookings []*domain.Booking) []domain.TimeSlot {
	busy := make([]domain.TimeSlot, 0, len(bookings))
	for _, b := range bookings {
		if b.AttorneyID != attorneyID || !b.Status.IsActive() {
			continue
		}
		busy = append(busy, b.Slot)
	}
	return busy
}

func overlapsAny(candidate domain.TimeSlot, busy []domain.TimeSlot, buffer time.Duration) bool {
	for _, slot := range busy {
		if candidate.Overlaps(slot, buffer) {
			return true
		}
	}
	return false
}

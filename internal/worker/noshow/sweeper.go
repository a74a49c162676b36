package noshow

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/usecase/transition_booking"
)

const defaultBatchSize = 100

// Sweeper периодически переводит подтвержденные бронирования в cancelled (no_show),
// если после окончания консультации прошло больше grace
type Sweeper struct {
	repo         BookingRepository
	transitioner Transitioner
	interval     time.Duration
	grace        time.Duration
	batchSize    int
	timeProvider TimeProvider
	logger       Logger
}

// NewSweeper создает воркер no-show
func NewSweeper(repo BookingRepository, transitioner Transitioner, interval, grace time.Duration, logger Logger) *Sweeper {
	return &Sweeper{
		repo:         repo,
		transitioner: transitioner,
		interval:     interval,
		grace:        grace,
		batchSize:    defaultBatchSize,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider устанавливает кастомный TimeProvider (для тестов)
func (s *Sweeper) WithTimeProvider(tp TimeProvider) *Sweeper {
	s.timeProvider = tp
	return s
}

// Run запускает цикл до отмены ctx
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("NoShowSweeper: started, interval=%s grace=%s", s.interval, s.grace)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("NoShowSweeper: stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("NoShowSweeper: sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce обрабатывает одну пачку просроченных бронирований и возвращает число закрытых
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	endedBefore := s.timeProvider.Now().Add(-s.grace)

	due, err := s.repo.ListDueForNoShow(ctx, endedBefore, s.batchSize)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, b := range due {
		if ctx.Err() != nil {
			return closed, ctx.Err()
		}

		_, err := s.transitioner.Execute(ctx, &transition_booking.Request{
			Actor:     domain.SystemActor,
			BookingID: b.ID,
			Event:     string(domain.EventNoShow),
		})
		if err != nil {
			// Бронирование могли отменить параллельно, это не ошибка воркера
			if errors.Is(err, domain.ErrInvalidTransition) {
				s.logger.Warn("NoShowSweeper: booking id=%s skipped: %v", b.ID, err)
				continue
			}
			s.logger.Error("NoShowSweeper: booking id=%s: %v", b.ID, err)
			continue
		}
		closed++
	}

	if closed > 0 {
		s.logger.Info("NoShowSweeper: closed %d of %d bookings as no-show", closed, len(due))
	}
	return closed, nil
}

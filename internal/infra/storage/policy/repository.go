package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// Repository политики расписания адвокатов в PostgreSQL (только чтение)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByAttorneyID получает политику расписания адвоката
func (r *Repository) GetByAttorneyID(ctx context.Context, attorneyID string) (*domain.AttorneyAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"attorney_id",
		"working_days",
		"daily_start",
		"daily_end",
		"timezone",
		"buffer_minutes",
		"min_duration_minutes",
		"max_duration_minutes",
		"advance_booking_days",
		"consultation_fee",
		"hourly_rate",
		"currency",
		"updated_at",
	).
		From("attorney_availability").
		Where(squirrel.Eq{"attorney_id": attorneyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAttorneyID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		a       domain.AttorneyAvailability
		days    []int64
		flatFee decimal.NullDecimal
		updated sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&a.AttorneyID,
		pq.Array(&days),
		&a.DailyStart,
		&a.DailyEnd,
		&a.Timezone,
		&a.BufferMinutes,
		&a.MinDurationMinutes,
		&a.MaxDurationMinutes,
		&a.AdvanceBookingDays,
		&flatFee,
		&a.Fees.HourlyRate,
		&a.Fees.Currency,
		&updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAvailabilityNotFound
	}
	if err != nil {
		if txmanager.IsRetryable(err) {
			return nil, fmt.Errorf("%w: GetByAttorneyID - %v", domain.ErrTransient, err)
		}
		return nil, fmt.Errorf("%w: GetByAttorneyID - scan availability: %v", ErrScanRow, err)
	}

	a.WorkingDays = make([]time.Weekday, 0, len(days))
	for _, d := range days {
		a.WorkingDays = append(a.WorkingDays, time.Weekday(d))
	}
	if flatFee.Valid {
		fee := flatFee.Decimal
		a.Fees.ConsultationFee = &fee
	}
	a.UpdatedAt = updated.Time

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: attorney=%s: %v", ErrInvalidAvailability, attorneyID, err)
	}

	return &a, nil
}

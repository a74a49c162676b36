package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

const (
	codeUniqueViolation    = "23505"
	codeExclusionViolation = "23P01"
	idempotencyIndex       = "bookings_idempotency_uq"
)

var bookingColumns = []string{
	"id",
	"attorney_id",
	"requester_id",
	"start_at",
	"duration_minutes",
	"status",
	"awaiting_payment",
	"consultation_mode",
	"booking_type",
	"amount",
	"currency",
	"payment_reference",
	"paid_at",
	"meeting_link",
	"topic",
	"description",
	"documents",
	"idempotency_key",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"transitioned_at",
}

func activeStatuses() []string {
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// Repository репозиторий бронирований в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое бронирование
// Вызывается в той же транзакции, что и LockAttorney/ListActiveInRange
func (r *Repository) Create(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"attorney_id",
			"requester_id",
			"start_at",
			"end_at",
			"duration_minutes",
			"status",
			"awaiting_payment",
			"consultation_mode",
			"booking_type",
			"amount",
			"currency",
			"payment_reference",
			"paid_at",
			"meeting_link",
			"topic",
			"description",
			"documents",
			"idempotency_key",
			"created_at",
			"transitioned_at",
		).
		Values(
			b.ID,
			b.AttorneyID,
			b.RequesterID,
			b.Slot.Start().UTC(),
			b.Slot.End().UTC(),
			b.Slot.DurationMinutes(),
			b.Status,
			b.AwaitingPayment,
			b.ConsultationMode,
			b.BookingType,
			b.Amount,
			b.Currency,
			b.PaymentReference,
			b.PaidAt,
			b.MeetingLink,
			b.Topic,
			b.Description,
			pq.Array(documentsOrEmpty(b.Documents)),
			b.IdempotencyKey,
			b.CreatedAt.UTC(),
			b.TransitionedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError("Create", err)
	}
	return nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	// Колонка id имеет тип UUID: иначе PostgreSQL вернет 22P02
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBookingNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, mapReadError("GetByID", ErrScanRow, err)
	}
	return b, nil
}

// GetByIdempotencyKey ищет бронирование заявителя с указанным ключом идемпотентности
func (r *Repository) GetByIdempotencyKey(ctx context.Context, requesterID, key string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"requester_id": requesterID, "idempotency_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIdempotencyKey - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, mapReadError("GetByIdempotencyKey", ErrScanRow, err)
	}
	return b, nil
}

// LockAttorney сериализует резервации одного адвоката между экземплярами сервиса.
// Advisory-блокировка транзакционная и снимается при COMMIT/ROLLBACK.
func (r *Repository) LockAttorney(ctx context.Context, attorneyID string) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: LockAttorney - attorney=%s", ErrNoTransaction, attorneyID)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", attorneyID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockAttorney - build query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return mapReadError("LockAttorney", ErrExecQuery, err)
	}
	return nil
}

// ListActiveInRange получает активные (pending/confirmed) бронирования адвоката,
// пересекающиеся с интервалом [from, to)
func (r *Repository) ListActiveInRange(ctx context.Context, attorneyID string, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"attorney_id": attorneyID, "status": activeStatuses()}).
		Where(squirrel.Lt{"start_at": to.UTC()}).
		Where(squirrel.Gt{"end_at": from.UTC()}).
		OrderBy("start_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapReadError("ListActiveInRange", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// List получает страницу бронирований по фильтру
// Порядок стабилен: start_at ASC, id ASC
func (r *Repository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	filter.Normalize()

	columns := append(append([]string{}, bookingColumns...), "count(*) OVER() AS total_count")
	selectBuilder := applyFilter(psqlbuilder.Select(columns...).From("bookings"), filter).
		OrderBy("start_at ASC", "id ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapReadError("List", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0, filter.Limit)
	total := 0
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	// Страница за пределами выборки: оконная функция ничего не вернула, считаем отдельно
	if len(bookings) == 0 && filter.Offset() > 0 {
		total, err = r.count(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
	}

	return bookings, total, nil
}

func (r *Repository) count(ctx context.Context, filter domain.BookingFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := applyFilter(psqlbuilder.Select("count(*)").From("bookings"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: count - build select query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, mapReadError("count", ErrScanRow, err)
	}
	return total, nil
}

// ListDueForNoShow получает подтвержденные бронирования, закончившиеся не позже endedBefore
func (r *Repository) ListDueForNoShow(ctx context.Context, endedBefore time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": string(domain.StatusConfirmed)}).
		Where(squirrel.LtOrEq{"end_at": endedBefore.UTC()}).
		OrderBy("end_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueForNoShow - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapReadError("ListDueForNoShow", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Update сохраняет результат перехода жизненного цикла.
// Запись обновляется, только если статус и флаг оплаты не изменились с момента чтения prev.
func (r *Repository) Update(ctx context.Context, next, prev *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", next.Status).
		Set("awaiting_payment", next.AwaitingPayment).
		Set("payment_reference", next.PaymentReference).
		Set("paid_at", next.PaidAt).
		Set("meeting_link", next.MeetingLink).
		Set("cancellation_reason", next.CancellationReason).
		Set("cancelled_at", next.CancelledAt).
		Set("transitioned_at", next.TransitionedAt.UTC()).
		Where(squirrel.Eq{
			"id":               next.ID,
			"status":           prev.Status,
			"awaiting_payment": prev.AwaitingPayment,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("Update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: Update - booking id=%s", ErrStaleBooking, next.ID)
	}
	return nil
}

func applyFilter(b squirrel.SelectBuilder, filter domain.BookingFilter) squirrel.SelectBuilder {
	if filter.AttorneyID != nil {
		b = b.Where(squirrel.Eq{"attorney_id": *filter.AttorneyID})
	}
	if filter.RequesterID != nil {
		b = b.Where(squirrel.Eq{"requester_id": *filter.RequesterID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		b = b.Where(squirrel.Eq{"status": statuses})
	}
	if filter.From != nil {
		b = b.Where(squirrel.Gt{"end_at": filter.From.UTC()})
	}
	if filter.To != nil {
		b = b.Where(squirrel.Lt{"start_at": filter.To.UTC()})
	}
	return b
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует строку с колонками bookingColumns и, опционально, дополнительными колонками
func scanBooking(row rowScanner, extra ...interface{}) (*domain.Booking, error) {
	var (
		b         domain.Booking
		startAt   time.Time
		duration  int
		documents []string
	)

	dest := []interface{}{
		&b.ID,
		&b.AttorneyID,
		&b.RequesterID,
		&startAt,
		&duration,
		&b.Status,
		&b.AwaitingPayment,
		&b.ConsultationMode,
		&b.BookingType,
		&b.Amount,
		&b.Currency,
		&b.PaymentReference,
		&b.PaidAt,
		&b.MeetingLink,
		&b.Topic,
		&b.Description,
		pq.Array(&documents),
		&b.IdempotencyKey,
		&b.CancellationReason,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.TransitionedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	b.Slot = domain.NewTimeSlot(startAt, duration)
	if len(documents) > 0 {
		b.Documents = documents
	}
	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func documentsOrEmpty(docs []string) []string {
	if docs == nil {
		return []string{}
	}
	return docs
}

// mapWriteError переводит ошибки PostgreSQL при записи в ошибки репозитория
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeExclusionViolation:
			return fmt.Errorf("%w: %s - %v", ErrSlotOverlap, op, err)
		case codeUniqueViolation:
			if pqErr.Constraint == idempotencyIndex {
				return fmt.Errorf("%w: %s - %v", ErrDuplicateIdempotencyKey, op, err)
			}
		}
	}
	return mapReadError(op, ErrExecQuery, err)
}

// mapReadError помечает повторяемые ошибки как domain.ErrTransient
func mapReadError(op string, kind, err error) error {
	if txmanager.IsRetryable(err) {
		return fmt.Errorf("%w: %s - %v", domain.ErrTransient, op, err)
	}
	return fmt.Errorf("%w: %s - %v", kind, op, err)
}

package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
)

// fakeRow подставляет значения в dest по порядку колонок
type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("expected %d columns, got %d", len(r.values), len(dest))
	}
	for i, d := range dest {
		if scanner, ok := d.(sql.Scanner); ok {
			if err := scanner.Scan(r.values[i]); err != nil {
				return err
			}
			continue
		}
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(r.values[i]).Convert(target.Type()))
	}
	return nil
}

func TestRepository_GetByID_MalformedIDIsNotFound(t *testing.T) {
	// Запрос в БД не выполняется: executor отсутствует
	repo := NewRepository(nil)

	for _, id := range []string{"abc", "b-1", "", "00000000-0000-0000-0000-00000000000z"} {
		_, err := repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, ErrBookingNotFound, "id=%q", id)
	}
}

func TestMapWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "exclusion violation", err: &pq.Error{Code: "23P01"}, wantErr: ErrSlotOverlap},
		{name: "idempotency index", err: &pq.Error{Code: "23505", Constraint: idempotencyIndex}, wantErr: ErrDuplicateIdempotencyKey},
		{name: "other unique index", err: &pq.Error{Code: "23505", Constraint: "bookings_pkey"}, wantErr: ErrExecQuery},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, wantErr: domain.ErrTransient},
		{name: "lock not available", err: &pq.Error{Code: "55P03"}, wantErr: domain.ErrTransient},
		{name: "deadline", err: fmt.Errorf("exec: %w", context.DeadlineExceeded), wantErr: domain.ErrTransient},
		{name: "plain error", err: errors.New("connection reset"), wantErr: ErrExecQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapWriteError("Create", tt.err), tt.wantErr)
		})
	}
}

func TestMapReadError(t *testing.T) {
	err := mapReadError("GetByID", ErrScanRow, &pq.Error{Code: "40P01"})
	assert.ErrorIs(t, err, domain.ErrTransient)

	err = mapReadError("GetByID", ErrScanRow, &pq.Error{Code: "22P02"})
	assert.ErrorIs(t, err, ErrScanRow)
	assert.NotErrorIs(t, err, domain.ErrTransient)
}

func TestApplyFilter(t *testing.T) {
	from := time.Date(2026, 10, 20, 6, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	query, args, err := applyFilter(psqlbuilder.Select("id").From("bookings"), domain.BookingFilter{
		AttorneyID: ptr.Ptr("att-1"),
		Statuses:   []domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed},
		From:       &from,
		To:         &to,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM bookings WHERE attorney_id = $1 AND status IN ($2,$3) AND end_at > $4 AND start_at < $5",
		query)
	assert.Equal(t, []interface{}{"att-1", "pending", "confirmed", from, to}, args)

	query, args, err = applyFilter(psqlbuilder.Select("id").From("bookings"), domain.BookingFilter{
		RequesterID: ptr.Ptr("client-1"),
	}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM bookings WHERE requester_id = $1", query)
	assert.Equal(t, []interface{}{"client-1"}, args)
}

func TestScanBooking(t *testing.T) {
	start := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)
	created := start.Add(-24 * time.Hour)

	// Порядок значений совпадает с bookingColumns, последним идет total_count
	row := fakeRow{values: []interface{}{
		"2b1c7c84-4a53-4f0e-9d0a-0d5b5f1c1a11",
		"att-1",
		"client-1",
		start,
		60,
		"confirmed",
		false,
		"video",
		"consultation",
		"150.00",
		"usd",
		nil,
		nil,
		ptr.Ptr("https://meet.example.com/video/x"),
		"Contract review",
		nil,
		[]byte("{a.pdf,b.pdf}"),
		nil,
		nil,
		nil,
		created,
		created,
		7,
	}}

	var total int
	b, err := scanBooking(row, &total)
	require.NoError(t, err)

	assert.Equal(t, 7, total)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, domain.ModeVideo, b.ConsultationMode)
	assert.True(t, b.Slot.Start().Equal(start))
	assert.Equal(t, 60, b.Slot.DurationMinutes())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, b.Documents)
	assert.Equal(t, "150", b.Amount.String())
	require.NotNil(t, b.MeetingLink)

	_, err = scanBooking(fakeRow{err: sql.ErrNoRows})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestList_OffsetStaysInRange(t *testing.T) {
	filter := domain.BookingFilter{Page: 576460752303423489, Limit: 20}
	filter.Normalize()

	query, _, err := psqlbuilder.Select("id").From("bookings").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, fmt.Sprintf("OFFSET %d", (domain.MaxPage-1)*20))
}

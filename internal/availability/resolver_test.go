package availability

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Понедельник 2026-10-19 08:00 по Москве
var testNow = time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC)

func testPolicy() *domain.AttorneyAvailability {
	return &domain.AttorneyAvailability{
		AttorneyID:         "attorney-1",
		WorkingDays:        []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		DailyStart:         "09:00",
		DailyEnd:           "17:00",
		Timezone:           "Europe/Moscow",
		BufferMinutes:      15,
		MinDurationMinutes: 30,
		MaxDurationMinutes: 90,
		AdvanceBookingDays: 14,
	}
}

func moscow(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return time.Date(2026, 10, day, hour, minute, 0, 0, loc)
}

func newTestResolver() *Resolver {
	return NewResolverWithClock(&FixedTimeProvider{At: testNow})
}

func TestCheckSlot(t *testing.T) {
	r := newTestResolver()
	policy := testPolicy()

	tests := []struct {
		name    string
		slot    domain.TimeSlot
		wantErr bool
	}{
		{name: "tomorrow 10:00", slot: domain.NewTimeSlot(moscow(t, 20, 10, 0), 60)},
		{name: "tomorrow 10:30 on buffer grid", slot: domain.NewTimeSlot(moscow(t, 20, 10, 30), 60)},
		{name: "last fitting slot", slot: domain.NewTimeSlot(moscow(t, 20, 16, 0), 60)},
		{name: "20 days out", slot: domain.NewTimeSlot(moscow(t, 19, 10, 0).AddDate(0, 0, 20), 60), wantErr: true},
		{name: "in the past", slot: domain.NewTimeSlot(moscow(t, 19, 7, 0), 60), wantErr: true},
		{name: "saturday", slot: domain.NewTimeSlot(moscow(t, 24, 10, 0), 60), wantErr: true},
		{name: "before opening", slot: domain.NewTimeSlot(moscow(t, 20, 8, 45), 60), wantErr: true},
		{name: "ends after closing", slot: domain.NewTimeSlot(moscow(t, 20, 16, 15), 60), wantErr: true},
		{name: "off grid", slot: domain.NewTimeSlot(moscow(t, 20, 10, 10), 60), wantErr: true},
		{name: "too short", slot: domain.NewTimeSlot(moscow(t, 20, 10, 0), 15), wantErr: true},
		{name: "too long", slot: domain.NewTimeSlot(moscow(t, 20, 10, 0), 120), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.CheckSlot(tt.slot, policy)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.False(t, r.IsSlotLegal(tt.slot, policy))
				return
			}
			assert.NoError(t, err)
			assert.True(t, r.IsSlotLegal(tt.slot, policy))
		})
	}
}

func TestResolveSlots_DurationOutOfBounds(t *testing.T) {
	r := newTestResolver()
	horizon := Horizon{From: testNow, To: testNow.AddDate(0, 0, 7)}

	_, err := r.ResolveSlots(testPolicy(), nil, horizon, 120)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = r.ResolveSlots(testPolicy(), nil, horizon, 20)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolveSlots_InvalidHorizon(t *testing.T) {
	r := newTestResolver()
	_, err := r.ResolveSlots(testPolicy(), nil, Horizon{From: testNow, To: testNow}, 60)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolveSlots_SingleDay(t *testing.T) {
	r := newTestResolver()
	horizon := Horizon{From: moscow(t, 20, 0, 0), To: moscow(t, 21, 0, 0)}

	seq, err := r.ResolveSlots(testPolicy(), nil, horizon, 60)
	require.NoError(t, err)

	slots := slices.Collect(seq)
	// 09:00..16:00 с шагом 15 минут
	require.Len(t, slots, 29)
	assert.True(t, slots[0].Start().Equal(moscow(t, 20, 9, 0)))
	assert.True(t, slots[len(slots)-1].Start().Equal(moscow(t, 20, 16, 0)))
}

func TestResolveSlots_HorizonBounds(t *testing.T) {
	r := newTestResolver()
	horizon := Horizon{From: moscow(t, 20, 14, 0), To: moscow(t, 21, 10, 0)}

	seq, err := r.ResolveSlots(testPolicy(), nil, horizon, 60)
	require.NoError(t, err)

	slots := slices.Collect(seq)
	// 20-го 14:00..16:00 (9 слотов), 21-го 09:00..09:45 (4 слота)
	require.Len(t, slots, 13)
	assert.True(t, slots[0].Start().Equal(moscow(t, 20, 14, 0)))
	assert.True(t, slots[len(slots)-1].Start().Equal(moscow(t, 21, 9, 45)))
	for _, s := range slots {
		assert.False(t, s.Start().Equal(moscow(t, 21, 10, 0)), "horizon end is exclusive")
	}

	// Соседние горизонты не пересекаются
	next, err := r.ResolveSlots(testPolicy(), nil, Horizon{From: moscow(t, 21, 10, 0), To: moscow(t, 21, 11, 0)}, 60)
	require.NoError(t, err)
	following := slices.Collect(next)
	require.NotEmpty(t, following)
	assert.True(t, following[0].Start().Equal(moscow(t, 21, 10, 0)))
}

func TestResolveSlots_DefaultDurationIsPolicyMinimum(t *testing.T) {
	r := newTestResolver()
	horizon := Horizon{From: moscow(t, 20, 0, 0), To: moscow(t, 21, 0, 0)}

	seq, err := r.ResolveSlots(testPolicy(), nil, horizon, 0)
	require.NoError(t, err)

	for slot := range seq {
		assert.Equal(t, 30, slot.DurationMinutes())
	}
}

func TestResolveSlots_ExcludesBusyIntervalsWithBuffer(t *testing.T) {
	r := newTestResolver()
	policy := testPolicy()
	horizon := Horizon{From: moscow(t, 20, 0, 0), To: moscow(t, 21, 0, 0)}

	existing := []*domain.Booking{
		{ID: "b1", AttorneyID: "attorney-1", Status: domain.StatusPending, Slot: domain.NewTimeSlot(moscow(t, 20, 10, 0), 60)},
		{ID: "b2", AttorneyID: "attorney-1", Status: domain.StatusCancelled, Slot: domain.NewTimeSlot(moscow(t, 20, 13, 0), 60)},
		{ID: "b3", AttorneyID: "attorney-2", Status: domain.StatusConfirmed, Slot: domain.NewTimeSlot(moscow(t, 20, 14, 0), 60)},
	}

	seq, err := r.ResolveSlots(policy, existing, horizon, 60)
	require.NoError(t, err)

	starts := make(map[string]bool)
	for slot := range seq {
		starts[slot.Start().Format("15:04")] = true
	}

	assert.False(t, starts["09:00"], "09:00-10:00 ends inside the buffer before 10:00")
	assert.False(t, starts["10:30"])
	assert.False(t, starts["11:00"], "11:00 is inside the 15 minute buffer")
	assert.True(t, starts["11:15"])
	assert.True(t, starts["13:00"], "cancelled booking does not block")
	assert.True(t, starts["14:00"], "other attorney does not block")
}

func TestResolveSlots_Restartable(t *testing.T) {
	r := newTestResolver()
	horizon := Horizon{From: testNow, To: testNow.AddDate(0, 0, 3)}

	seq, err := r.ResolveSlots(testPolicy(), nil, horizon, 45)
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.NotEmpty(t, first)
	assert.Equal(t, len(first), len(second))

	// Ранний выход не ломает последовательность
	count := 0
	for range seq {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestResolveSlots_NeverPastHorizonOrBeforeNow(t *testing.T) {
	r := newTestResolver()
	policy := testPolicy()
	horizon := Horizon{From: testNow.AddDate(0, 0, -3), To: testNow.AddDate(0, 0, 30)}

	seq, err := r.ResolveSlots(policy, nil, horizon, 60)
	require.NoError(t, err)

	limit := testNow.Add(policy.Horizon())
	for slot := range seq {
		assert.False(t, slot.Start().Before(testNow))
		assert.False(t, slot.Start().After(limit))
	}
}

// Каждый кандидат сетки легален тогда и только тогда, когда он попадает в ResolveSlots
func TestIsSlotLegal_AgreesWithResolveSlots(t *testing.T) {
	r := newTestResolver()
	horizon := Horizon{From: testNow.AddDate(0, 0, -2), To: testNow.AddDate(0, 0, 20)}

	policies := []*domain.AttorneyAvailability{testPolicy()}

	noBuffer := testPolicy()
	noBuffer.BufferMinutes = 0
	policies = append(policies, noBuffer)

	weekend := testPolicy()
	weekend.WorkingDays = []time.Weekday{time.Saturday, time.Sunday}
	weekend.Timezone = "America/New_York"
	weekend.DailyStart = "18:00"
	weekend.DailyEnd = "24:00"
	policies = append(policies, weekend)

	for _, policy := range policies {
		for _, duration := range []int{30, 60, 90} {
			seq, err := r.ResolveSlots(policy, nil, horizon, duration)
			require.NoError(t, err)

			resolved := make(map[int64]bool)
			for slot := range seq {
				resolved[slot.Start().Unix()] = true
			}

			grid, err := Candidates(policy, duration, horizon)
			require.NoError(t, err)

			checked := 0
			for candidate := range grid {
				checked++
				assert.Equal(t, resolved[candidate.Start().Unix()], r.IsSlotLegal(candidate, policy),
					"policy tz=%s duration=%d start=%s", policy.Timezone, duration, candidate.Start())
			}
			assert.Positive(t, checked)
		}
	}
}

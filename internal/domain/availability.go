package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// FeeSchedule attorney pricing used by the payment gate
type FeeSchedule struct {
	ConsultationFee *decimal.Decimal // flat fee per consultation, nil = charge hourly
	HourlyRate      decimal.Decimal
	Currency        string
}

// AttorneyAvailability per-attorney scheduling policy, owned by the attorney profile
type AttorneyAvailability struct {
	AttorneyID         string
	WorkingDays        []time.Weekday
	DailyStart         types.TimeString
	DailyEnd           types.TimeString
	Timezone           string
	BufferMinutes      int
	MinDurationMinutes int
	MaxDurationMinutes int
	AdvanceBookingDays int
	Fees               FeeSchedule
	UpdatedAt          time.Time
}

// Location resolves the attorney timezone
func (a *AttorneyAvailability) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, NewValidationError("timezone", fmt.Sprintf("unknown timezone %q", a.Timezone))
	}
	return loc, nil
}

// WorksOn returns true if the weekday is a working day
func (a *AttorneyAvailability) WorksOn(day time.Weekday) bool {
	for _, d := range a.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

// Buffer minimum idle time between consecutive bookings
func (a *AttorneyAvailability) Buffer() time.Duration {
	return time.Duration(a.BufferMinutes) * time.Minute
}

// Horizon maximum distance from now a booking may start
func (a *AttorneyAvailability) Horizon() time.Duration {
	return time.Duration(a.AdvanceBookingDays) * 24 * time.Hour
}

// AcceptsDuration returns true if minutes is within [min, max]
func (a *AttorneyAvailability) AcceptsDuration(minutes int) bool {
	return minutes >= a.MinDurationMinutes && minutes <= a.MaxDurationMinutes
}

// Validate checks the policy is internally consistent
func (a *AttorneyAvailability) Validate() error {
	if a.AttorneyID == "" {
		return NewValidationError("attorneyId", "is required")
	}
	if len(a.WorkingDays) == 0 {
		return NewValidationError("workingDays", "at least one working day is required")
	}
	for _, d := range a.WorkingDays {
		if d < time.Sunday || d > time.Saturday {
			return NewValidationError("workingDays", fmt.Sprintf("invalid weekday %d", d))
		}
	}
	if err := a.DailyStart.Validate(); err != nil {
		return NewValidationError("dailyStart", err.Error())
	}
	if err := a.DailyEnd.Validate(); err != nil {
		return NewValidationError("dailyEnd", err.Error())
	}
	if !a.DailyStart.IsBefore(a.DailyEnd) {
		return NewValidationError("dailyEnd", "must be after dailyStart")
	}
	if _, err := a.Location(); err != nil {
		return err
	}
	if a.BufferMinutes < 0 || a.BufferMinutes > MaxBufferMinutes {
		return NewValidationError("bufferMinutes", fmt.Sprintf("must be within [0, %d]", MaxBufferMinutes))
	}
	if a.MinDurationMinutes < MinConsultationMinutes || a.MaxDurationMinutes > MaxConsultationMinutes ||
		a.MinDurationMinutes > a.MaxDurationMinutes {
		return NewValidationError("duration", fmt.Sprintf("bounds must satisfy %d <= min <= max <= %d",
			MinConsultationMinutes, MaxConsultationMinutes))
	}
	if a.AdvanceBookingDays < 1 || a.AdvanceBookingDays > MaxAdvanceBookingDays {
		return NewValidationError("advanceBookingDays", fmt.Sprintf("must be within [1, %d]", MaxAdvanceBookingDays))
	}
	if a.Fees.HourlyRate.IsNegative() || (a.Fees.ConsultationFee != nil && a.Fees.ConsultationFee.IsNegative()) {
		return NewValidationError("fees", "must not be negative")
	}
	return nil
}

package models

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// AvailabilityResponse политика расписания адвоката в том виде, в котором ее применяет движок
type AvailabilityResponse struct {
	AttorneyID         string   `json:"attorneyId"`
	WorkingDays        []string `json:"workingDays"` // "monday", "tuesday", ...
	DailyStart         string   `json:"dailyStart"`  // HH:MM
	DailyEnd           string   `json:"dailyEnd"`    // HH:MM
	Timezone           string   `json:"timezone"`
	BufferMinutes      int      `json:"bufferMinutes"`
	MinDuration        int      `json:"minConsultationDuration"`
	MaxDuration        int      `json:"maxConsultationDuration"`
	AdvanceBookingDays int      `json:"advanceBookingDays"`
	ConsultationFee    *string  `json:"consultationFee,omitempty"`
	HourlyRate         string   `json:"hourlyRate"`
	Currency           string   `json:"currency"`
	UpdatedAt          string   `json:"updatedAt"`
}

// FromDomain конвертирует доменную политику в DTO
func FromDomain(a *domain.AttorneyAvailability) *AvailabilityResponse {
	days := make([]string, 0, len(a.WorkingDays))
	for _, d := range a.WorkingDays {
		days = append(days, strings.ToLower(d.String()))
	}

	resp := &AvailabilityResponse{
		AttorneyID:         a.AttorneyID,
		WorkingDays:        days,
		DailyStart:         a.DailyStart.String(),
		DailyEnd:           a.DailyEnd.String(),
		Timezone:           a.Timezone,
		BufferMinutes:      a.BufferMinutes,
		MinDuration:        a.MinDurationMinutes,
		MaxDuration:        a.MaxDurationMinutes,
		AdvanceBookingDays: a.AdvanceBookingDays,
		HourlyRate:         a.Fees.HourlyRate.StringFixed(2),
		Currency:           a.Fees.Currency,
	}
	if a.Fees.ConsultationFee != nil {
		fee := a.Fees.ConsultationFee.StringFixed(2)
		resp.ConsultationFee = &fee
	}
	if !a.UpdatedAt.IsZero() {
		resp.UpdatedAt = a.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

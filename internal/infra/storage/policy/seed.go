package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// seedFile формат файла политик для database.driver = "memory"
//
//	[[attorney]]
//	attorney_id = "attorney-1"
//	working_days = ["monday", "tuesday"]
//	daily_start = "09:00"
//	...
type seedFile struct {
	Attorneys []seedAttorney `toml:"attorney"`
}

type seedAttorney struct {
	AttorneyID         string   `toml:"attorney_id"`
	WorkingDays        []string `toml:"working_days"`
	DailyStart         string   `toml:"daily_start"`
	DailyEnd           string   `toml:"daily_end"`
	Timezone           string   `toml:"timezone"`
	BufferMinutes      int      `toml:"buffer_minutes"`
	MinDuration        int      `toml:"min_duration_minutes"`
	MaxDuration        int      `toml:"max_duration_minutes"`
	AdvanceBookingDays int      `toml:"advance_booking_days"`
	ConsultationFee    string   `toml:"consultation_fee"`
	HourlyRate         string   `toml:"hourly_rate"`
	Currency           string   `toml:"currency"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadSeed загружает политики из TOML файла в память и возвращает их число
func LoadSeed(path string, repo *MemoryRepository) (int, error) {
	var file seedFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return 0, fmt.Errorf("%w: seed %s: %v", ErrInvalidAvailability, path, err)
	}
	return putAll(file, repo)
}

// ParseSeed то же, что LoadSeed, но из строки (используется в тестах)
func ParseSeed(data string, repo *MemoryRepository) (int, error) {
	var file seedFile
	if _, err := toml.Decode(data, &file); err != nil {
		return 0, fmt.Errorf("%w: seed: %v", ErrInvalidAvailability, err)
	}
	return putAll(file, repo)
}

func putAll(file seedFile, repo *MemoryRepository) (int, error) {
	for _, s := range file.Attorneys {
		a, err := s.toDomain()
		if err != nil {
			return 0, fmt.Errorf("%w: attorney=%s: %v", ErrInvalidAvailability, s.AttorneyID, err)
		}
		if err := repo.Put(a); err != nil {
			return 0, err
		}
	}
	return len(file.Attorneys), nil
}

func (s seedAttorney) toDomain() (domain.AttorneyAvailability, error) {
	days := make([]time.Weekday, 0, len(s.WorkingDays))
	for _, raw := range s.WorkingDays {
		d, ok := weekdays[strings.ToLower(raw)]
		if !ok {
			return domain.AttorneyAvailability{}, fmt.Errorf("unknown weekday %q", raw)
		}
		days = append(days, d)
	}

	a := domain.AttorneyAvailability{
		AttorneyID:         s.AttorneyID,
		WorkingDays:        days,
		DailyStart:         types.TimeString(s.DailyStart),
		DailyEnd:           types.TimeString(s.DailyEnd),
		Timezone:           s.Timezone,
		BufferMinutes:      s.BufferMinutes,
		MinDurationMinutes: s.MinDuration,
		MaxDurationMinutes: s.MaxDuration,
		AdvanceBookingDays: s.AdvanceBookingDays,
		Fees:               domain.FeeSchedule{Currency: s.Currency},
	}

	if s.HourlyRate != "" {
		rate, err := decimal.NewFromString(s.HourlyRate)
		if err != nil {
			return domain.AttorneyAvailability{}, fmt.Errorf("hourly_rate: %v", err)
		}
		a.Fees.HourlyRate = rate
	}
	if s.ConsultationFee != "" {
		fee, err := decimal.NewFromString(s.ConsultationFee)
		if err != nil {
			return domain.AttorneyAvailability{}, fmt.Errorf("consultation_fee: %v", err)
		}
		a.Fees.ConsultationFee = &fee
	}
	return a, nil
}

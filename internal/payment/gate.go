package payment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

var minutesPerHour = decimal.NewFromInt(60)

// Decision результат оценки платежного шлюза
type Decision struct {
	RequiresPayment bool
	Cleared         bool
	Amount          decimal.Decimal
	Currency        string
}

// Evaluate решает, нужна ли оплата до подтверждения, и записывает сумму в бронирование.
//
// Сумма: для консультации фиксированный гонорар, если он задан, иначе почасовая ставка
// пропорционально длительности; для встречи всегда почасовая ставка.
// Оплата обязательна при положительной сумме и формате, отличном от in_person
// (очные встречи оплачиваются в офисе).
func Evaluate(b *domain.Booking, fees domain.FeeSchedule) (Decision, error) {
	amount, err := computeAmount(b, fees)
	if err != nil {
		return Decision{}, err
	}

	requires, err := requiresPayment(b.ConsultationMode, amount)
	if err != nil {
		return Decision{}, err
	}

	b.Amount = amount
	b.Currency = strings.ToLower(fees.Currency)

	return Decision{
		RequiresPayment: requires,
		Cleared:         !requires || b.PaymentCleared(),
		Amount:          amount,
		Currency:        b.Currency,
	}, nil
}

func computeAmount(b *domain.Booking, fees domain.FeeSchedule) (decimal.Decimal, error) {
	hourly := fees.HourlyRate.
		Mul(decimal.NewFromInt(int64(b.Slot.DurationMinutes()))).
		Div(minutesPerHour).
		Round(2)

	switch b.BookingType {
	case domain.TypeConsultation:
		if fees.ConsultationFee != nil {
			return fees.ConsultationFee.Round(2), nil
		}
		return hourly, nil
	case domain.TypeMeeting:
		return hourly, nil
	default:
		return decimal.Zero, domain.NewValidationError("bookingType", fmt.Sprintf("unknown booking type %q", b.BookingType))
	}
}

func requiresPayment(mode domain.ConsultationMode, amount decimal.Decimal) (bool, error) {
	switch mode {
	case domain.ModeVideo, domain.ModeAudio, domain.ModeChat:
		return amount.IsPositive(), nil
	case domain.ModeInPerson:
		return false, nil
	default:
		return false, domain.NewValidationError("consultationMode", fmt.Sprintf("unknown consultation mode %q", mode))
	}
}

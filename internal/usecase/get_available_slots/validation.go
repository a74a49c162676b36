package get_available_slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.AttorneyID) == "" {
		return domain.NewValidationError("attorneyId", "is required")
	}
	if req.DurationMinutes < 0 {
		return domain.NewValidationError("duration", "must be positive")
	}
	if req.DurationMinutes > domain.MaxConsultationMinutes {
		return domain.NewValidationError("duration",
			fmt.Sprintf("must be at most %d minutes", domain.MaxConsultationMinutes))
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return domain.NewValidationError("to", "must be after from")
	}
	return nil
}

// window вычисляет окно поиска: не раньше now и не дальше горизонта бронирования
func window(req *Request, policy *domain.AttorneyAvailability, now time.Time, maxHorizonDays int) (time.Time, time.Time) {
	from := now
	if req.From != nil && req.From.After(now) {
		from = *req.From
	}

	to := from.AddDate(0, 0, domain.DefaultAvailabilityHorizon)
	if req.To != nil {
		to = *req.To
	}

	limit := now.Add(policy.Horizon())
	if maxHorizonDays > 0 {
		if capped := now.AddDate(0, 0, maxHorizonDays); capped.Before(limit) {
			limit = capped
		}
	}
	if to.After(limit) {
		to = limit
	}
	return from, to
}

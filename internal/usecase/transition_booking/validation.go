package transition_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) (domain.Event, error) {
	if req.Actor.UserID == "" {
		return "", fmt.Errorf("%w: missing actor", domain.ErrForbidden)
	}
	if strings.TrimSpace(req.BookingID) == "" {
		return "", domain.NewValidationError("bookingId", "is required")
	}

	event, err := domain.ParseEvent(req.Event)
	if err != nil {
		return "", err
	}

	if req.Reason != nil && len([]rune(*req.Reason)) > domain.MaxCancellationReasonLength {
		return "", domain.NewValidationError("reason",
			fmt.Sprintf("must be at most %d characters", domain.MaxCancellationReasonLength))
	}
	return event, nil
}

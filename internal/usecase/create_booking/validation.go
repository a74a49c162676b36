package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) (domain.BookingType, domain.ConsultationMode, error) {
	if req.Requester.UserID == "" || req.Requester.IsSystem() {
		return "", "", fmt.Errorf("%w: requester must be a user", domain.ErrForbidden)
	}

	if strings.TrimSpace(req.AttorneyID) == "" {
		return "", "", domain.NewValidationError("attorneyId", "is required")
	}
	if req.AttorneyID == req.Requester.UserID {
		return "", "", domain.NewValidationError("attorneyId", "cannot book a consultation with yourself")
	}

	if req.Start.IsZero() {
		return "", "", domain.NewValidationError("bookingDate", "is required")
	}
	if req.DurationMinutes < 0 {
		return "", "", domain.NewValidationError("duration", "must be positive")
	}
	if req.DurationMinutes > domain.MaxConsultationMinutes {
		return "", "", domain.NewValidationError("duration",
			fmt.Sprintf("must be at most %d minutes", domain.MaxConsultationMinutes))
	}

	bookingType, err := domain.ParseBookingType(req.BookingType)
	if err != nil {
		return "", "", err
	}
	mode, err := domain.ParseConsultationMode(req.ConsultationMode)
	if err != nil {
		return "", "", err
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return "", "", domain.NewValidationError("consultationTopic", "is required")
	}
	if len([]rune(topic)) > domain.MaxTopicLength {
		return "", "", domain.NewValidationError("consultationTopic",
			fmt.Sprintf("must be at most %d characters", domain.MaxTopicLength))
	}

	if req.Description != nil && len([]rune(*req.Description)) > domain.MaxDescriptionLength {
		return "", "", domain.NewValidationError("description",
			fmt.Sprintf("must be at most %d characters", domain.MaxDescriptionLength))
	}

	if len(req.Documents) > domain.MaxDocuments {
		return "", "", domain.NewValidationError("documents",
			fmt.Sprintf("at most %d documents", domain.MaxDocuments))
	}
	for i, doc := range req.Documents {
		if strings.TrimSpace(doc) == "" {
			return "", "", domain.NewValidationError(fmt.Sprintf("documents[%d]", i), "must not be empty")
		}
	}

	if req.IdempotencyKey != nil {
		key := *req.IdempotencyKey
		if key == "" || len(key) > domain.MaxIdempotencyKeyLength {
			return "", "", domain.NewValidationError("idempotencyKey",
				fmt.Sprintf("must be 1..%d characters", domain.MaxIdempotencyKeyLength))
		}
	}

	return bookingType, mode, nil
}

func durationError(policy *domain.AttorneyAvailability) error {
	return domain.NewValidationError("duration",
		fmt.Sprintf("must be within [%d, %d] minutes", policy.MinDurationMinutes, policy.MaxDurationMinutes))
}

// sameRequest проверяет, что повтор с тем же ключом описывает то же бронирование
func sameRequest(existing *domain.Booking, req *Request, durationMinutes int) bool {
	return existing.AttorneyID == req.AttorneyID &&
		existing.Slot.Start().Equal(req.Start) &&
		existing.Slot.DurationMinutes() == durationMinutes
}

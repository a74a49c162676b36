package create_booking

import (
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingActor       = "отсутствует идентификация пользователя"
)

const headerIdempotencyKey = "Idempotency-Key"

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
// Header Idempotency-Key (опционально): повтор с тем же ключом вернет первое бронирование со статусом 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request: user_id=%s: %v", actor.UserID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты)
	useCaseReq, err := req.ToUseCaseRequest(actor, r.Header.Get(headerIdempotencyKey))
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: user_id=%s: %v", actor.UserID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%s, attorney_id=%s, error=%v",
				actor.UserID, req.AttorneyID, err)
		} else {
			h.logger.Warn("POST /bookings - Booking rejected: user_id=%s, attorney_id=%s, status=%d, error=%v",
				actor.UserID, req.AttorneyID, status, err)
		}
		return
	}

	response := models.FromDomainBooking(result.Booking)

	if result.Replayed {
		h.logger.Info("POST /bookings - Idempotent replay: booking_id=%s, user_id=%s", result.Booking.ID, actor.UserID)
		handlers.RespondJSON(w, http.StatusOK, response)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, user_id=%s, attorney_id=%s, status=%s",
		result.Booking.ID, actor.UserID, req.AttorneyID, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusCreated, response)
}

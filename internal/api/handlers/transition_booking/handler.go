package transition_booking

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingActor       = "отсутствует идентификация пользователя"
)

type Handler struct {
	useCase TransitionBookingUseCase
	logger  Logger
}

func NewHandler(useCase TransitionBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/transition
// Body: {"event": "accept|reject|cancel|complete|no_show", "reason": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]
	if bookingID == "" {
		h.logger.Warn("POST /bookings/{id}/transition - Missing booking ID")
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/transition - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req TransitionBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/transition - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /bookings/{id}/transition - Invalid request: booking_id=%s: %v", bookingID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	booking, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor, bookingID))
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /bookings/{id}/transition - Failed to apply %s: booking_id=%s, error=%v",
				req.Event, bookingID, err)
		} else {
			h.logger.Warn("POST /bookings/{id}/transition - Rejected %s: booking_id=%s, user_id=%s, status=%d: %v",
				req.Event, bookingID, actor.UserID, status, err)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/transition - Applied %s: booking_id=%s, user_id=%s, status=%s",
		req.Event, bookingID, actor.UserID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking))
}

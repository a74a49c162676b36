package list_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
)

const (
	msgMissingActor = "отсутствует идентификация пользователя"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings
// Query params: status, from, to, page, limit (опционально)
// Адвокат получает бронирования к себе, клиент свои заявки
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	serviceReq, err := ToServiceRequest(actor, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /bookings - Invalid parameters: user_id=%s: %v", actor.UserID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /bookings - Failed to list bookings: user_id=%s, error=%v", actor.UserID, err)
		} else {
			h.logger.Warn("GET /bookings - Rejected: user_id=%s, status=%d: %v", actor.UserID, status, err)
		}
		return
	}

	h.logger.Info("GET /bookings - Bookings retrieved successfully: user_id=%s, count=%d, total=%d",
		actor.UserID, len(result.Bookings), result.Pagination.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}

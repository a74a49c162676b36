package get_attorney_availability

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
)

const (
	msgInvalidAttorneyID = "некорректный ID адвоката"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/attorneys/{attorneyId}/availability
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	attorneyID := mux.Vars(r)["attorneyId"]
	if attorneyID == "" {
		h.logger.Warn("GET /attorneys/{id}/availability - Missing attorney ID")
		handlers.RespondBadRequest(w, msgInvalidAttorneyID)
		return
	}

	result, err := h.service.GetAvailability(r.Context(), attorneyID)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /attorneys/{id}/availability - Failed to get availability: attorney_id=%s, error=%v",
				attorneyID, err)
		} else {
			h.logger.Warn("GET /attorneys/{id}/availability - attorney_id=%s, status=%d: %v", attorneyID, status, err)
		}
		return
	}

	h.logger.Info("GET /attorneys/{id}/availability - Availability retrieved successfully: attorney_id=%s", attorneyID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

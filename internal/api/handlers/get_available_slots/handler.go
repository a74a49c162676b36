package get_available_slots

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
)

const (
	msgInvalidAttorneyID = "некорректный ID адвоката"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/attorneys/{attorneyId}/available-slots
// Query params: from, to (ISO 8601), duration (минуты), все опциональны
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	attorneyID := mux.Vars(r)["attorneyId"]
	if attorneyID == "" {
		h.logger.Warn("GET /attorneys/{id}/available-slots - Missing attorney ID")
		handlers.RespondBadRequest(w, msgInvalidAttorneyID)
		return
	}

	useCaseReq, err := ToUseCaseRequest(attorneyID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /attorneys/{id}/available-slots - Invalid parameters: attorney_id=%s: %v", attorneyID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /attorneys/{id}/available-slots - Failed to get slots: attorney_id=%s, error=%v",
				attorneyID, err)
		} else {
			h.logger.Warn("GET /attorneys/{id}/available-slots - attorney_id=%s, status=%d: %v", attorneyID, status, err)
		}
		return
	}

	h.logger.Info("GET /attorneys/{id}/available-slots - Slots retrieved successfully: attorney_id=%s, slots_count=%d",
		attorneyID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

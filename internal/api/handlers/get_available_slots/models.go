package get_available_slots

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ConsultationService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	AttorneyID      string          `json:"attorneyId"`
	Timezone        string          `json:"timezone"`
	DurationMinutes int             `json:"duration"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot свободный слот; время в часовом поясе адвоката
type AvailableSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	loc, err := time.LoadLocation(resp.Timezone)
	if err != nil {
		loc = time.UTC
	}

	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		local := slot.In(loc)
		slots[i] = AvailableSlot{
			Start: local.Start().Format(time.RFC3339),
			End:   local.End().Format(time.RFC3339),
		}
	}

	return &AvailableSlotsResponse{
		AttorneyID:      resp.AttorneyID,
		Timezone:        resp.Timezone,
		DurationMinutes: resp.DurationMinutes,
		From:            resp.From.In(loc).Format(time.RFC3339),
		To:              resp.To.In(loc).Format(time.RFC3339),
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров ?from=&to=&duration=
func ToUseCaseRequest(attorneyID string, query url.Values) (*getAvailableSlots.Request, error) {
	req := &getAvailableSlots.Request{AttorneyID: attorneyID}

	for name, dst := range map[string]**time.Time{"from": &req.From, "to": &req.To} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, domain.NewValidationError(name, "must be an ISO 8601 timestamp with offset")
		}
		*dst = &t
	}

	if raw := query.Get("duration"); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil || duration < 0 {
			return nil, domain.NewValidationError("duration", "must be a non-negative integer")
		}
		req.DurationMinutes = duration
	}

	return req, nil
}

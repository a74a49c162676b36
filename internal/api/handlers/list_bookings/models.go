package list_bookings

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// status=pending,confirmed&from=<RFC3339>&to=<RFC3339>&page=1&limit=20
func ToServiceRequest(actor domain.Actor, query url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{Actor: actor}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	var err error
	if req.From, err = parseTime(query, "from"); err != nil {
		return nil, err
	}
	if req.To, err = parseTime(query, "to"); err != nil {
		return nil, err
	}
	if req.Page, err = parseInt(query, "page"); err != nil {
		return nil, err
	}
	if req.Limit, err = parseInt(query, "limit"); err != nil {
		return nil, err
	}

	return req, nil
}

func parseTime(query url.Values, name string) (*time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be an ISO 8601 timestamp with offset")
	}
	return &t, nil
}

func parseInt(query url.Values, name string) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return v, nil
}

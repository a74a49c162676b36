package get_attorney_availability

import (
	"context"

	"github.com/m04kA/SMC-ConsultationService/internal/service/schedule/models"
)

type ScheduleService interface {
	GetAvailability(ctx context.Context, attorneyID string) (*models.AvailabilityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

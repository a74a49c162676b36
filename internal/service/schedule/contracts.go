package schedule

import (
	"context"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// PolicyRepository интерфейс репозитория политик расписания адвокатов
type PolicyRepository interface {
	GetByAttorneyID(ctx context.Context, attorneyID string) (*domain.AttorneyAvailability, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

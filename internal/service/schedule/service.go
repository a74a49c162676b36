package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	policyRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-ConsultationService/internal/service/schedule/models"
)

// Service сервис чтения политик расписания адвокатов.
// Политика принадлежит профилю адвоката, здесь она доступна только на чтение.
type Service struct {
	policyRepo PolicyRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(policyRepo PolicyRepository, logger Logger) *Service {
	return &Service{
		policyRepo: policyRepo,
		logger:     logger,
	}
}

// GetAvailability возвращает политику расписания адвоката
func (s *Service) GetAvailability(ctx context.Context, attorneyID string) (*models.AvailabilityResponse, error) {
	if attorneyID == "" {
		return nil, domain.NewValidationError("attorneyId", "is required")
	}

	s.logger.Info("GetAvailability: fetching availability for attorney=%s", attorneyID)

	availability, err := s.policyRepo.GetByAttorneyID(ctx, attorneyID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrAvailabilityNotFound) {
			s.logger.Warn("GetAvailability: attorney=%s has no availability", attorneyID)
			return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, ErrAttorneyNotFound)
		}
		s.logger.Error("GetAvailability: repository error for attorney=%s: %v", attorneyID, err)
		if errors.Is(err, domain.ErrTransient) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: GetAvailability - repository error: %v", ErrInternal, err)
	}

	return models.FromDomain(availability), nil
}

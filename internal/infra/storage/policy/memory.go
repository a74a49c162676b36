package policy

import (
	"context"
	"fmt"
	"sync"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// MemoryRepository политики расписания в памяти (database.driver = "memory", тесты)
type MemoryRepository struct {
	mu       sync.RWMutex
	policies map[string]domain.AttorneyAvailability
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{policies: make(map[string]domain.AttorneyAvailability)}
}

// Put сохраняет политику адвоката после валидации
func (r *MemoryRepository) Put(a domain.AttorneyAvailability) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: attorney=%s: %v", ErrInvalidAvailability, a.AttorneyID, err)
	}
	a.WorkingDays = append(a.WorkingDays[:0:0], a.WorkingDays...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[a.AttorneyID] = a
	return nil
}

func (r *MemoryRepository) GetByAttorneyID(_ context.Context, attorneyID string) (*domain.AttorneyAvailability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.policies[attorneyID]
	if !ok {
		return nil, ErrAvailabilityNotFound
	}
	a.WorkingDays = append(a.WorkingDays[:0:0], a.WorkingDays...)
	return &a, nil
}

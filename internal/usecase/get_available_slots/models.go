package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	AttorneyID      string     // ID адвоката
	From            *time.Time // Начало окна поиска (по умолчанию сейчас)
	To              *time.Time // Конец окна поиска (по умолчанию через DefaultAvailabilityHorizon дней)
	DurationMinutes int        // Длительность; 0 = минимальная по политике адвоката
}

// Response модель ответа со списком доступных слотов
type Response struct {
	AttorneyID      string            // ID адвоката
	Timezone        string            // Часовой пояс адвоката
	DurationMinutes int               // Длительность слотов
	From            time.Time         // Фактическое начало окна
	To              time.Time         // Фактический конец окна
	Slots           []domain.TimeSlot // Свободные слоты по возрастанию начала
}

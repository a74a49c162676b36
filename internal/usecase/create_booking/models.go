package create_booking

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	Requester        domain.Actor // Кто бронирует (из identity)
	AttorneyID       string       // ID адвоката
	Start            time.Time    // Начало консультации
	DurationMinutes  int          // Длительность; 0 = минимальная по политике адвоката
	Topic            string       // Тема консультации
	Description      *string      // Описание (опционально)
	Documents        []string     // Ссылки на документы (опционально)
	BookingType      string       // consultation | meeting
	ConsultationMode string       // video | audio | in_person | chat
	IdempotencyKey   *string      // Ключ идемпотентности (опционально)
}

// Response результат создания
type Response struct {
	Booking *domain.Booking
	// Replayed true, если вернули бронирование, созданное ранее с тем же ключом
	Replayed bool
}

// Config настройки usecase
type Config struct {
	// IdempotencyWindow сколько повтор с тем же ключом возвращает первое бронирование
	IdempotencyWindow time.Duration
	// DefaultCurrency валюта, если в тарифах адвоката она не указана
	DefaultCurrency string
}

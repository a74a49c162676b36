package lifecycle

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// MeetingLinkProvider выдает ссылку на видеовстречу для подтвержденной консультации
type MeetingLinkProvider interface {
	NewLink(booking *domain.Booking) (string, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

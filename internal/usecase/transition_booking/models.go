package transition_booking

import "github.com/m04kA/SMC-ConsultationService/internal/domain"

// Request модель запроса на переход бронирования
type Request struct {
	Actor     domain.Actor // Кто применяет событие
	BookingID string       // ID бронирования
	Event     string       // accept | reject | cancel | complete | no_show
	Reason    *string      // Причина отмены или отклонения (опционально)
}

// PaymentRequest сигнал об успешной оплате
type PaymentRequest struct {
	BookingID string // ID бронирования из метаданных платежа
	Reference string // ID платежа у провайдера
}

// PaymentResponse результат обработки сигнала оплаты
type PaymentResponse struct {
	Booking *domain.Booking
	// Changed false, если оплата уже была учтена
	Changed bool
}

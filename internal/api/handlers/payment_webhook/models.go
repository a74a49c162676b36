package payment_webhook

// metadataBookingID ключ метаданных PaymentIntent, в котором лежит ID бронирования
const metadataBookingID = "booking_id"

// WebhookResponse ответ провайдеру платежей
type WebhookResponse struct {
	Received bool   `json:"received"`
	Applied  bool   `json:"applied"`
	Status   string `json:"status,omitempty"`
}

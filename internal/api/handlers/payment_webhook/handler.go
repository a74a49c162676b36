package payment_webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	transitionBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/transition_booking"
)

const (
	msgInvalidPayload   = "некорректное тело запроса"
	msgInvalidSignature = "некорректная подпись webhook"
	maxPayloadBytes     = 65536
	headerSignature     = "Stripe-Signature"
)

type Handler struct {
	useCase PaymentUseCase
	secret  string
	logger  Logger
}

func NewHandler(useCase PaymentUseCase, secret string, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		secret:  secret,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/stripe/webhook
// Обрабатывает payment_intent.succeeded: снимает флаг ожидания оплаты с бронирования из metadata.booking_id
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Warn("POST /payments/stripe/webhook - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	// 1. Проверяем подпись
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get(headerSignature), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.logger.Warn("POST /payments/stripe/webhook - Signature verification failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSignature)
		return
	}

	// 2. Остальные типы событий подтверждаем без действий
	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		h.logger.Info("POST /payments/stripe/webhook - Ignored event: id=%s, type=%s", event.ID, event.Type)
		handlers.RespondJSON(w, http.StatusOK, WebhookResponse{Received: true})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		h.logger.Warn("POST /payments/stripe/webhook - Invalid payment intent: event_id=%s: %v", event.ID, err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	bookingID := intent.Metadata[metadataBookingID]
	if bookingID == "" {
		h.logger.Warn("POST /payments/stripe/webhook - Payment intent without booking: intent_id=%s", intent.ID)
		handlers.RespondJSON(w, http.StatusOK, WebhookResponse{Received: true})
		return
	}

	// 3. Отмечаем оплату (идемпотентно)
	result, err := h.useCase.MarkPaid(r.Context(), &transitionBooking.PaymentRequest{
		BookingID: bookingID,
		Reference: intent.ID,
	})
	if err != nil {
		// Повтор не поможет: подтверждаем, чтобы провайдер не ретраил
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTransition) ||
			errors.Is(err, domain.ErrValidation) {
			h.logger.Warn("POST /payments/stripe/webhook - Payment not applied: booking_id=%s, intent_id=%s: %v",
				bookingID, intent.ID, err)
			handlers.RespondJSON(w, http.StatusOK, WebhookResponse{Received: true})
			return
		}
		h.logger.Error("POST /payments/stripe/webhook - Failed to mark paid: booking_id=%s, intent_id=%s, error=%v",
			bookingID, intent.ID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /payments/stripe/webhook - Payment applied: booking_id=%s, intent_id=%s, changed=%t, status=%s",
		bookingID, intent.ID, result.Changed, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, WebhookResponse{
		Received: true,
		Applied:  result.Changed,
		Status:   string(result.Booking.Status),
	})
}

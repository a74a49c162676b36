package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	createBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/create_booking"
	getAttorneyAvailabilityHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_attorney_availability"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_booking"
	listBookingsHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/list_bookings"
	paymentWebhookHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/payment_webhook"
	transitionBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/transition_booking"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	"github.com/m04kA/SMC-ConsultationService/pkg/metrics"
)

// Handlers набор HTTP обработчиков сервиса
type Handlers struct {
	CreateBooking           *createBookingHandler.Handler
	GetBooking              *getBookingHandler.Handler
	ListBookings            *listBookingsHandler.Handler
	TransitionBooking       *transitionBookingHandler.Handler
	GetAvailableSlots       *getAvailableSlotsHandler.Handler
	GetAttorneyAvailability *getAttorneyAvailabilityHandler.Handler
	// PaymentWebhook nil, если секрет webhook не настроен
	PaymentWebhook *paymentWebhookHandler.Handler
}

// RouterConfig параметры роутера
type RouterConfig struct {
	Identity middleware.IdentityResolver
	// Metrics nil отключает HTTP метрики и /metrics
	Metrics     *metrics.Metrics
	MetricsPath string
	Logger      middleware.Logger
}

// NewRouter настраивает маршруты /api/v1
func NewRouter(h Handlers, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(cfg.Metrics))
		r.Handle(cfg.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Политика расписания адвоката
	api.HandleFunc("/attorneys/{attorneyId}/availability", h.GetAttorneyAvailability.Handle).Methods(http.MethodGet)

	// Свободные слоты адвоката
	api.HandleFunc("/attorneys/{attorneyId}/available-slots", h.GetAvailableSlots.Handle).Methods(http.MethodGet)

	// Сигнал об оплате (проверяется подписью Stripe)
	if h.PaymentWebhook != nil {
		api.HandleFunc("/payments/stripe/webhook", h.PaymentWebhook.Handle).Methods(http.MethodPost)
	}

	// ============================================================
	// PROTECTED ROUTES (требуют Authorization: Bearer)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Identity, cfg.Logger))

	protected.HandleFunc("/bookings", h.CreateBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", h.ListBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", h.GetBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/transition", h.TransitionBooking.Handle).Methods(http.MethodPost)

	return r
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-ConsultationService/internal/api"
	createBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/create_booking"
	getAttorneyAvailabilityHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_attorney_availability"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_booking"
	listBookingsHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/list_bookings"
	paymentWebhookHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/payment_webhook"
	transitionBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/transition_booking"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	"github.com/m04kA/SMC-ConsultationService/internal/availability"
	"github.com/m04kA/SMC-ConsultationService/internal/config"
	"github.com/m04kA/SMC-ConsultationService/internal/conflictguard"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	policyRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/identityservice"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/jwtauth"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/notifier"
	"github.com/m04kA/SMC-ConsultationService/internal/lifecycle"
	bookingsService "github.com/m04kA/SMC-ConsultationService/internal/service/bookings"
	scheduleService "github.com/m04kA/SMC-ConsultationService/internal/service/schedule"
	createBookingUC "github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-ConsultationService/internal/usecase/get_available_slots"
	transitionBookingUC "github.com/m04kA/SMC-ConsultationService/internal/usecase/transition_booking"
	"github.com/m04kA/SMC-ConsultationService/internal/worker/noshow"
	"github.com/m04kA/SMC-ConsultationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/logger"
	"github.com/m04kA/SMC-ConsultationService/pkg/metrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// bookingStore общий набор методов postgres и memory хранилищ бронирований
type bookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByIdempotencyKey(ctx context.Context, requesterID, key string) (*domain.Booking, error)
	LockAttorney(ctx context.Context, attorneyID string) error
	ListActiveInRange(ctx context.Context, attorneyID string, from, to time.Time) ([]*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error)
	ListDueForNoShow(ctx context.Context, endedBefore time.Time, limit int) ([]*domain.Booking, error)
	Update(ctx context.Context, next, prev *domain.Booking) error
}

type policyStore interface {
	GetByAttorneyID(ctx context.Context, attorneyID string) (*domain.AttorneyAvailability, error)
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type bookingNotifier interface {
	Notify(event notifier.BookingEvent)
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ConsultationService...")

	durations, err := cfg.Booking.Durations()
	if err != nil {
		log.Fatal("Invalid booking config: %v", err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище: PostgreSQL или память процесса
	var (
		bookings bookingStore
		policies policyStore
		txMgr    txManager
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		memoryPolicies := policyRepo.NewMemoryRepository()
		if cfg.Database.SeedFile != "" {
			n, err := policyRepo.LoadSeed(cfg.Database.SeedFile, memoryPolicies)
			if err != nil {
				log.Fatal("Failed to load attorney seed: %v", err)
			}
			log.Info("Loaded %d attorney availability policies from %s", n, cfg.Database.SeedFile)
		}
		bookings = bookingRepo.NewMemoryRepository()
		policies = memoryPolicies
		txMgr = simpletxmanager.NewLocalManager(cfg.Database.TxTimeout())
		log.Warn("Using in-memory storage: data is lost on restart")

	default:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		// Проверяем соединение
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Metrics.Enabled {
			wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
			log.Info("Database metrics collection started")

			bookings = bookingRepo.NewRepository(wrappedDB)
			policies = policyRepo.NewRepository(wrappedDB)
			txMgr = txmanager.NewTransactionManager(wrappedDB).WithTimeout(cfg.Database.TxTimeout())
		} else {
			bookings = bookingRepo.NewRepository(db)
			policies = policyRepo.NewRepository(db)
			txMgr = simpletxmanager.NewTransactionManager(db, cfg.Database.TxTimeout())
		}
	}

	// Идентификация вызывающего: локальный JWT или внешний identity-сервис
	var identity middleware.IdentityResolver
	switch cfg.Identity.Mode {
	case "remote":
		identity = identityservice.NewClient(cfg.Identity.URL, time.Duration(cfg.Identity.Timeout)*time.Second, log)
		log.Info("Identity: remote service %s (timeout=%ds)", cfg.Identity.URL, cfg.Identity.Timeout)
	default:
		identity = jwtauth.NewManager(cfg.Identity.JWTSecret, time.Hour)
		log.Info("Identity: local JWT verification")
	}

	// Уведомления о событиях бронирований
	var events bookingNotifier = notifier.Nop{}
	if cfg.Notifications.Enabled {
		events = notifier.NewKafkaNotifier(
			cfg.Notifications.Brokers,
			cfg.Notifications.Topic,
			time.Duration(cfg.Notifications.TimeoutMs)*time.Millisecond,
			log,
		)
		log.Info("Notifications: kafka brokers=%v topic=%s", cfg.Notifications.Brokers, cfg.Notifications.Topic)
	}

	// Ядро: резолвер слотов, guard пересечений, машина состояний
	lifecyclePolicy, err := lifecycle.NewPolicy(cfg.Booking.AcceptanceRequiredTypes, durations.NoShowGrace)
	if err != nil {
		log.Fatal("Invalid booking.acceptance_required_types: %v", err)
	}
	resolver := availability.NewResolver()
	guard := conflictguard.NewGuard(bookings, durations.ReserveTimeout, log)
	machine := lifecycle.NewMachine(lifecyclePolicy, lifecycle.NewRoomLinkProvider(cfg.Meetings.BaseURL), &lifecycle.RealTimeProvider{})

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookings, log)
	scheduleSvc := scheduleService.NewService(policies, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookings,
		policies,
		resolver,
		guard,
		machine,
		txMgr,
		events,
		metricsCollector,
		createBookingUC.Config{
			IdempotencyWindow: durations.IdempotencyWindow,
			DefaultCurrency:   cfg.Payments.Currency,
		},
		log,
	)

	transitionBookingUseCase := transitionBookingUC.NewUseCase(
		bookings,
		machine,
		txMgr,
		events,
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookings,
		policies,
		resolver,
		cfg.Booking.MaxHorizonDays,
		log,
	)

	// Инициализируем handlers
	handlers := api.Handlers{
		CreateBooking:           createBookingHandler.NewHandler(createBookingUseCase, log),
		GetBooking:              getBookingHandler.NewHandler(bookingSvc, log),
		ListBookings:            listBookingsHandler.NewHandler(bookingSvc, log),
		TransitionBooking:       transitionBookingHandler.NewHandler(transitionBookingUseCase, log),
		GetAvailableSlots:       getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log),
		GetAttorneyAvailability: getAttorneyAvailabilityHandler.NewHandler(scheduleSvc, log),
	}
	if cfg.Payments.StripeWebhookSecret != "" {
		handlers.PaymentWebhook = paymentWebhookHandler.NewHandler(transitionBookingUseCase, cfg.Payments.StripeWebhookSecret, log)
		log.Info("Stripe payment webhook enabled")
	} else {
		log.Warn("payments.stripe_webhook_secret is empty: payment webhook disabled")
	}

	// Настраиваем роутер
	r := api.NewRouter(handlers, api.RouterConfig{
		Identity:    identity,
		Metrics:     metricsCollector,
		MetricsPath: cfg.Metrics.Path,
		Logger:      log,
	})

	// Воркер no-show
	workerCtx, stopWorker := context.WithCancel(context.Background())
	sweeper := noshow.NewSweeper(bookings, transitionBookingUseCase, durations.SweepInterval, durations.NoShowGrace, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		sweeper.Run(workerCtx)
	}()

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopWorker()
	<-workerDone

	// Дожидаемся отправки уведомлений
	if err := events.Close(); err != nil {
		log.Error("Failed to close notifier: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

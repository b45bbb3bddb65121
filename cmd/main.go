package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-MeetingService/internal/api/handlers"
	calendarConnectionHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/calendar_connection"
	calendarTokenHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/calendar_token"
	cancelAppointmentHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/cancel_appointment"
	createBookingHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/create_booking"
	getAppointmentHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/get_appointment"
	getAvailabilityHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/get_availability"
	getAvailableSlotsHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/get_available_slots"
	listAppointmentsHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/list_appointments"
	updateAvailabilityHandler "github.com/m04kA/SMC-MeetingService/internal/api/handlers/update_availability"
	"github.com/m04kA/SMC-MeetingService/internal/api/middleware"
	"github.com/m04kA/SMC-MeetingService/internal/config"
	"github.com/m04kA/SMC-MeetingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-MeetingService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-MeetingService/internal/infra/storage/availability"
	calendarTokenRepo "github.com/m04kA/SMC-MeetingService/internal/infra/storage/calendar_token"
	"github.com/m04kA/SMC-MeetingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MeetingService/internal/integrations/googlecalendar"
	userServiceClient "github.com/m04kA/SMC-MeetingService/internal/integrations/userservice"
	completeAppointmentsJob "github.com/m04kA/SMC-MeetingService/internal/jobs/complete_appointments"
	appointmentsService "github.com/m04kA/SMC-MeetingService/internal/service/appointments"
	availabilityService "github.com/m04kA/SMC-MeetingService/internal/service/availability"
	"github.com/m04kA/SMC-MeetingService/internal/service/resolver"
	createBookingUC "github.com/m04kA/SMC-MeetingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-MeetingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-MeetingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MeetingService/pkg/logger"
	"github.com/m04kA/SMC-MeetingService/pkg/metrics"
	"github.com/m04kA/SMC-MeetingService/pkg/txmanager"
)

// Контракты хранилища, общие для обоих драйверов
type (
	rulesStore interface {
		GetRules(ctx context.Context, ownerID int64) ([]domain.AvailabilityRule, error)
		ReplaceRules(ctx context.Context, ownerID int64, rules []domain.AvailabilityRule) error
	}

	appointmentStore interface {
		appointmentsService.AppointmentRepository
		getAvailableSlotsUC.AppointmentRepository
	}

	tokenStore interface {
		GetRefreshToken(ctx context.Context, ownerID int64) (string, bool, error)
		SaveRefreshToken(ctx context.Context, ownerID int64, token string) error
		DeleteRefreshToken(ctx context.Context, ownerID int64) error
	}

	txManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
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

	log.Info("Starting SMC-MeetingService...")
	log.Info("Configuration loaded from %s", *configPath)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Failed to load time zone %s: %v", cfg.Booking.TimeZone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем хранилище
	var (
		rulesRepository       rulesStore
		appointmentRepository appointmentStore
		tokenRepository       tokenStore
		txMgr                 txManager
		pinger                handlers.Pinger
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
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

		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

		rulesRepository = availabilityRepo.NewRepository(wrappedDB)
		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		tokenRepository = calendarTokenRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB).WithRetries(cfg.Database.ReserveRetries)
		pinger = wrappedDB

	case config.DriverMemory:
		store := memory.NewStore()
		rulesRepository = store
		appointmentRepository = store
		tokenRepository = store
		txMgr = memory.TxManager{}
		log.Warn("Using in-memory storage, data will be lost on restart")
	}

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	calendarClient := googlecalendar.NewClient(googlecalendar.Config{
		ClientID:             cfg.GoogleCalendar.ClientID,
		ClientSecret:         cfg.GoogleCalendar.ClientSecret,
		AuthURL:              cfg.GoogleCalendar.AuthURL,
		TokenURL:             cfg.GoogleCalendar.TokenURL,
		BaseURL:              cfg.GoogleCalendar.BaseURL,
		CalendarID:           cfg.GoogleCalendar.CalendarID,
		Timeout:              time.Duration(cfg.GoogleCalendar.Timeout) * time.Second,
		Location:             location,
		RequestsPerSecond:    cfg.GoogleCalendar.RequestsPerSecond,
		Burst:                cfg.GoogleCalendar.Burst,
		BreakerFailures:      cfg.GoogleCalendar.BreakerFailures,
		BreakerOpenTimeout:   time.Duration(cfg.GoogleCalendar.BreakerOpenTimeout) * time.Second,
		EmailReminderMinutes: cfg.GoogleCalendar.EmailReminderMinutes,
		PopupReminderMinutes: cfg.GoogleCalendar.PopupReminderMinutes,
	}, tokenRepository, metricsCollector, log)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds, GoogleCalendar=%s timeout=%ds)",
		cfg.UserService.URL, cfg.UserService.Timeout, cfg.GoogleCalendar.BaseURL, cfg.GoogleCalendar.Timeout)

	slotResolver := resolver.New(resolver.Settings{
		Location:        location,
		WindowStartHour: cfg.Booking.WindowStartHour,
		WindowEndHour:   cfg.Booking.WindowEndHour,
		SlotMinutes:     cfg.Booking.SlotMinutes,
	})
	minNotice := time.Duration(cfg.Booking.MinNoticeMinutes) * time.Minute

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		txMgr,
		calendarClient,
		time.Duration(cfg.Booking.MaxAppointmentMinutes)*time.Minute,
		log,
	)
	availabilitySvc := availabilityService.NewService(
		rulesRepository,
		txMgr,
		cfg.Booking.MaxRules,
		log,
	)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		rulesRepository,
		appointmentRepository,
		calendarClient,
		slotResolver,
		getAvailableSlotsUC.Settings{
			MinNotice:                minNotice,
			RequireConnectedCalendar: cfg.Booking.RequireConnectedCalendar,
		},
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		rulesRepository,
		calendarClient,
		userClient,
		appointmentSvc,
		slotResolver,
		createBookingUC.Settings{
			MinNotice:                minNotice,
			RequireConnectedCalendar: cfg.Booking.RequireConnectedCalendar,
		},
		metricsCollector,
		log,
	)

	// Фоновое завершение прошедших встреч
	var scheduler *completeAppointmentsJob.Scheduler
	if cfg.Jobs.CompletionEnabled {
		job := completeAppointmentsJob.NewJob(appointmentSvc, metricsCollector, log)
		scheduler, err = completeAppointmentsJob.NewScheduler(cfg.Jobs.CompletionSpec, location, job, log)
		if err != nil {
			log.Fatal("Failed to schedule completion job: %v", err)
		}
		scheduler.Start()
		log.Info("Completion job scheduled (%s)", cfg.Jobs.CompletionSpec)
	}

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, location, log)
	getAvailability := getAvailabilityHandler.NewHandler(availabilitySvc, log)
	updateAvailability := updateAvailabilityHandler.NewHandler(availabilitySvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	calendarConnection := calendarConnectionHandler.NewHandler(calendarClient, log)
	calendarToken := calendarTokenHandler.NewHandler(tokenRepository, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", handlers.Health(pinger)).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты владельца на день
	api.HandleFunc("/owners/{ownerId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Шаблон доступности владельца
	api.HandleFunc("/owners/{ownerId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Привязан ли календарь пользователя
	api.HandleFunc("/users/{userId}/calendar-connection", calendarConnection.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Доступность ---
	protected.HandleFunc("/owners/{ownerId}/availability", updateAvailability.Handle).Methods(http.MethodPut)

	// --- Встречи ---
	protected.HandleFunc("/appointments", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// ============================================================
	// INTERNAL ROUTES (для сервиса аутентификации)
	// ============================================================

	internal := r.PathPrefix("/internal/v1").Subrouter()
	internal.HandleFunc("/users/{userId}/calendar-token", calendarToken.Save).Methods(http.MethodPut)
	internal.HandleFunc("/users/{userId}/calendar-token", calendarToken.Delete).Methods(http.MethodDelete)

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

	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Error("Completion job did not stop in time: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

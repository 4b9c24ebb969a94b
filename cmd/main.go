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
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-BarberScheduling/internal/api"
	"github.com/m04kA/SMC-BarberScheduling/internal/api/middleware"
	"github.com/m04kA/SMC-BarberScheduling/internal/config"
	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	"github.com/m04kA/SMC-BarberScheduling/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-BarberScheduling/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-BarberScheduling/internal/integrations/catalog"
	appointmentsService "github.com/m04kA/SMC-BarberScheduling/internal/service/appointments"
	createAppointmentUC "github.com/m04kA/SMC-BarberScheduling/internal/usecase/create_appointment"
	getAvailabilityUC "github.com/m04kA/SMC-BarberScheduling/internal/usecase/get_availability"
	"github.com/m04kA/SMC-BarberScheduling/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberScheduling/pkg/logger"
	"github.com/m04kA/SMC-BarberScheduling/pkg/metrics"
	"github.com/m04kA/SMC-BarberScheduling/pkg/txmanager"
)

// appointmentStore общий контракт Postgres и in-memory хранилищ
type appointmentStore interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetWithFilter(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, at time.Time) (*domain.Appointment, error)
}

type transactor interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type directory interface {
	GetBarber(ctx context.Context, id int64) (*domain.Barber, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
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

	log.Info("Starting SMC-BarberScheduling...")

	location, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal("Invalid timezone: %v", err)
	}
	log.Info("Shop timezone: %s", location)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище записей и менеджер транзакций
	var (
		store     appointmentStore
		txManager transactor
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		store = appointmentRepo.NewRepository(wrappedDB, location)
		txManager = txmanager.NewTransactionManager(wrappedDB, cfg.Scheduling.TxMaxRetries)

	case config.StorageDriverMemory:
		store = appointmentRepo.NewMemoryRepository()
		txManager = txmanager.NewNoop()
		log.Warn("Using in-memory appointment storage, data is lost on restart")
	}

	// Блокировка мастера на время арбитража
	var locker createAppointmentUC.Locker
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		cancel()

		locker = lock.NewRedisLocker(
			rdb,
			cfg.Redis.KeyPrefix,
			time.Duration(cfg.Redis.LockTTL)*time.Millisecond,
			time.Duration(cfg.Redis.RetryInterval)*time.Millisecond,
			log,
		)
		log.Info("Barber arbitration uses redis lock at %s", cfg.Redis.Addr)
	} else {
		locker = lock.NewLocalLocker()
		log.Info("Barber arbitration uses in-process lock")
	}

	// Справочник мастеров и услуг
	var barberCatalog directory
	switch cfg.Catalog.Source {
	case config.CatalogSourceHTTP:
		barberCatalog = catalog.NewClient(cfg.Catalog.BaseURL, time.Duration(cfg.Catalog.Timeout)*time.Second, log)
		log.Info("Catalog client initialized (url=%s timeout=%ds)", cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	case config.CatalogSourceStatic:
		barberCatalog = catalog.NewStaticDirectory(cfg.Catalog.Barbers, cfg.Catalog.Services)
		log.Info("Static catalog loaded (barbers=%d, services=%d)", len(cfg.Catalog.Barbers), len(cfg.Catalog.Services))
	}

	// Инициализируем use cases и сервисы
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		store,
		barberCatalog,
		&getAvailabilityUC.RealTimeProvider{},
		location,
		log,
	)

	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		store,
		barberCatalog,
		txManager,
		locker,
		metricsCollector,
		&createAppointmentUC.RealTimeProvider{},
		createAppointmentUC.Config{
			Location:           location,
			ArbitrationTimeout: cfg.Scheduling.ArbitrationTimeoutDuration(),
		},
		log,
	)

	appointmentSvc := appointmentsService.NewService(
		store,
		metricsCollector,
		&createAppointmentUC.RealTimeProvider{},
		location,
		log,
	)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
		log.Info("Rate limit on appointment writes: %.2f rps, burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// Настраиваем роутер
	r := api.NewRouter(api.Dependencies{
		Availability: getAvailabilityUseCase,
		Booking:      createAppointmentUseCase,
		Appointments: appointmentSvc,
		Location:     location,
		Metrics:      metricsCollector,
		MetricsPath:  cfg.Metrics.Path,
		RateLimiter:  rateLimiter,
		Logger:       log,
	})

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

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

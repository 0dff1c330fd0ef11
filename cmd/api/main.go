package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/config"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	appHTTP "github.com/cmlabs-hris/shift-engine-go/internal/handler/http"
	"github.com/cmlabs-hris/shift-engine-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/events"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/lock"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/logger"
	"github.com/cmlabs-hris/shift-engine-go/internal/repository/memory"
	"github.com/cmlabs-hris/shift-engine-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/shift-engine-go/internal/service/attendance"
	locationService "github.com/cmlabs-hris/shift-engine-go/internal/service/location"
	scheduleService "github.com/cmlabs-hris/shift-engine-go/internal/service/schedule"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type repositories struct {
	shifts     shift.ShiftStore
	locations  location.LocationRepository
	attendance attendance.AttendanceRepository
	employees  employee.EmployeeRepository
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthChecks := map[string]appHTTP.HealthCheck{}

	// Storage
	var (
		repos repositories
		db    *database.DB
	)
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		var err error
		db, err = database.NewPostgreSQLDB(connectCtx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repos = repositories{
			shifts:     postgresql.NewShiftRepository(db),
			locations:  postgresql.NewLocationRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			employees:  postgresql.NewEmployeeRepository(db),
		}
		healthChecks["postgres"] = db.Ping
	case config.StoreDriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			shifts:     store.Shifts(),
			locations:  store.Locations(),
			attendance: store.Attendance(),
			employees:  store.Employees(),
		}
	}

	// Per-employee scheduling lock
	var locker lock.Locker
	switch cfg.Scheduling.LockDriver {
	case config.LockDriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = lock.NewRedisLocker(rdb, cfg.Scheduling.LockTTL, cfg.Scheduling.LockRetry)
		healthChecks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	case config.LockDriverPostgres:
		// advisory locks pin connections, so they get a pool of their own
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		lockDB, err := database.NewPostgreSQLDB(connectCtx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Scheduling.LockPoolSize,
			MinConns: 1,
		})
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect lock pool: %w", err)
		}
		defer lockDB.Close()

		locker = lock.NewPostgresLocker(lockDB.Pool, cfg.Scheduling.LockRetry)
	default:
		locker = lock.NewLocalLocker()
	}

	// Domain events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.PublishTimeout)
		if err != nil {
			return err
		}
		publisher = amqpPublisher
		log.Info("publishing domain events", slog.String("exchange", cfg.RabbitMQ.Exchange))
	}
	defer publisher.Close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	scheduleSvc := scheduleService.NewScheduleService(repos.shifts, repos.locations, repos.employees, scheduleService.Options{
		TimeZone:         cfg.Location(),
		BatchConcurrency: cfg.Scheduling.BatchConcurrency,
		Locker:           locker,
		Publisher:        publisher,
		Logger:           log,
	})
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendance, repos.locations, repos.employees, attendanceService.Options{
		TimeZone:  cfg.Location(),
		Publisher: publisher,
		Logger:    log,
	})
	locationSvc := locationService.NewLocationService(repos.locations, log)

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.NewShiftHandler(scheduleSvc),
		appHTTP.NewLocationHandler(locationSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.RouterOptions{
			Logger:         log,
			AllowedOrigins: []string{cfg.App.FrontendURL},
			RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.AttendancePerMinute, cfg.RateLimit.Burst),
			HealthChecks:   healthChecks,
		},
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting",
			slog.Int("port", cfg.App.Port),
			slog.String("store", cfg.Store.Driver),
			slog.String("lock", cfg.Scheduling.LockDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	log.Info("server stopped gracefully")

	return nil
}

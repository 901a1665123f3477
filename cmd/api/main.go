package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/attendance-service/internal/api/http"
	"github.com/spec-kit/attendance-service/internal/api/http/handlers"
	"github.com/spec-kit/attendance-service/internal/auth"
	"github.com/spec-kit/attendance-service/internal/config"
	"github.com/spec-kit/attendance-service/internal/events"
	"github.com/spec-kit/attendance-service/internal/locker"
	"github.com/spec-kit/attendance-service/internal/observability"
	"github.com/spec-kit/attendance-service/internal/persistence"
	"github.com/spec-kit/attendance-service/internal/service"
	"github.com/spec-kit/attendance-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.EphemeralSecret {
		logger.Warn("AUTH_JWT_SECRET not set; using a random signing secret, every restart invalidates issued tokens")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	readiness := map[string]handlers.Pinger{}
	if pg.Enabled() {
		readiness["postgres"] = pg
	}

	var keyLocker locker.Locker = locker.NewLocalLocker()
	if cfg.Attendance.LockBackend == config.LockBackendRedis {
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		keyLocker = locker.NewRedisLocker(redis.Client, cfg.Attendance.LockTTL(), logger)
		readiness["redis"] = redis
	}
	logger.Info("attendance lock backend", zap.String("backend", cfg.Attendance.LockBackend))

	loc, err := cfg.Attendance.Location()
	if err != nil {
		logger.Fatal("invalid attendance timezone", zap.Error(err))
	}
	repos := persistence.NewRepositories(pg)
	metrics := observability.NewMetrics()

	notifications := worker.NewNotificationWorker(events.NewInMemoryDispatcher(logger), cfg.Notification.QueueSize, logger)
	worker.StartNotificationWorker(ctx, notifications, service.NewPayrollNotifier(logger))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     repos.Users,
		TokenManager: tokens,
		Logger:       logger,
	})
	employeeService := service.NewEmployeeService(service.EmployeeDependencies{
		EmployeeRepo:   repos.Employees,
		DepartmentRepo: repos.Departments,
	})
	departmentService := service.NewDepartmentService(repos.Departments)
	attendanceService := service.NewAttendanceService(service.AttendanceDependencies{
		AttendanceRepo:      repos.Attendance,
		EmployeeRepo:        repos.Employees,
		Locker:              keyLocker,
		Dispatcher:          notifications,
		Logger:              logger,
		Location:            loc,
		EnforceSignOutOrder: cfg.Attendance.EnforceSignOutOrder,
	})

	gate := auth.NewGate(tokens, logger, auth.GateConfig{
		PublicPaths:  cfg.Auth.PublicPaths,
		StrictTokens: cfg.Auth.StrictTokens,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness, metrics),
		Users:       handlers.NewUsersHandler(authService),
		Attendance:  handlers.NewAttendanceHandler(attendanceService),
		Employees:   handlers.NewEmployeesHandler(employeeService),
		Departments: handlers.NewDepartmentsHandler(departmentService, employeeService),
		Gate:        gate,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := notifications.Stop(stopCtx); err != nil {
		logger.Warn("notification worker did not drain", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

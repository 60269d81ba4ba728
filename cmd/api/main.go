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

	httptransport "github.com/spec-kit/incident-service/internal/api/http"
	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/persistence"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
	"github.com/spec-kit/incident-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)
	teamAdminRepo := repository.NewTeamAdminRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	incidentRepo := repository.NewIncidentRepository(pool)
	historyRepo := repository.NewIncidentHistoryRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var rotationStore service.RotationStore
	if cfg.Engine.RotationStore == "redis" {
		rotationStore = service.NewRedisRotationStore(redis.Client)
	} else {
		rotationStore = service.NewMemoryRotationStore()
	}

	gate := service.NewWorkloadGate(incidentRepo, cfg.Engine.MaxActiveAssignments)
	resolver := service.NewCategoryResolver(categoryRepo, teamRepo)
	rotation := service.NewRotationSelector(rotationStore, gate)

	assignment := service.NewAssignmentService(service.AssignmentDependencies{
		TechnicianRepo: technicianRepo,
		TeamAdminRepo:  teamAdminRepo,
		Resolver:       resolver,
		Rotation:       rotation,
		Gate:           gate,
	})
	sweeper := service.NewSweepService(service.SweepDependencies{
		IncidentRepo:   incidentRepo,
		TechnicianRepo: technicianRepo,
		HistoryRepo:    historyRepo,
		Assignment:     assignment,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	incidentService := service.NewIncidentService(service.IncidentDependencies{
		IncidentRepo:   incidentRepo,
		TechnicianRepo: technicianRepo,
		LocationRepo:   locationRepo,
		AttachmentRepo: attachmentRepo,
		HistoryRepo:    historyRepo,
		Assignment:     assignment,
		Sweeper:        sweeper,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:       userRepo,
		TechnicianRepo: technicianRepo,
		TeamAdminRepo:  teamAdminRepo,
		ResetRepo:      resetRepo,
		Tokens:         tokens,
		BcryptCost:     cfg.Auth.BcryptCost,
		ResetTTL:       time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		Logger:         logger,
	})
	technicianService := service.NewTechnicianService(technicianRepo, teamAdminRepo, teamRepo, cfg.Auth.BcryptCost)
	catalogService := service.NewCatalogService(categoryRepo, teamRepo, locationRepo)
	notificationService := service.NewNotificationService(cfg.Notification, logger)
	worker.RegisterNotificationHandlers(dispatcher, notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo, technicianRepo, teamAdminRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Incidents:      handlers.NewIncidentsHandler(incidentService),
		StaffIncidents: handlers.NewStaffIncidentsHandler(incidentService),
		Technicians:    handlers.NewTechniciansHandler(technicianService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Admin:          handlers.NewAdminHandler(sweeper, metrics),
		AuthMiddleware: authMiddleware,
	})

	sweepWorker := worker.NewSweepWorker(sweeper, metrics, logger, cfg.Engine.SweepInterval())
	if err := sweepWorker.Start(); err != nil {
		logger.Fatal("failed to start sweep worker", zap.Error(err))
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	sweepWorker.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

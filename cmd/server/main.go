package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"haul/internal/app"
	"haul/internal/auth"
	"haul/internal/config"
	"haul/internal/domain"
	"haul/internal/handler"
	"haul/internal/logger"
	internalRedis "haul/internal/redis"
	"haul/internal/repository"
	firestoreRepo "haul/internal/repository/firestore"
	"haul/internal/repository/memory"
	"haul/internal/repository/postgres"
	"haul/internal/service"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	// Initialize the store.
	var store repository.Store
	var db *sql.DB
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				log.WithError(err).Fatal("failed to migrate database")
			}
		}
		store = postgres.NewStore(db, cfg.Database.QueryTimeout)
		log.Info("Connected to PostgreSQL")
	case config.DriverMemory:
		store = memory.NewStore()
		log.Warn("Using in-memory store; data is lost on restart")
	}

	// Initialize Redis with New Relic instrumentation.
	var redisClient redis.Cmdable
	if cfg.Redis.Enabled {
		client, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer client.Close()
		redisClient = client
		log.Info("Connected to Redis")
	}

	// Initialize Firebase when tokens or profiles come from it.
	var fbApp *firebase.App
	if cfg.Auth.Provider == config.AuthProviderFirebase || cfg.Profiles.Source == config.ProfileSourceFirestore {
		fbApp, err = app.NewFirebaseApp(ctx, cfg.Auth)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize firebase")
		}
	}

	authenticator, err := newAuthenticator(ctx, cfg, fbApp)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize authenticator")
	}

	profileRepo, closeProfiles, err := newProfileRepository(ctx, cfg, db, fbApp)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize profile repository")
	}
	defer closeProfiles()

	// Wire dependencies.
	server := wireServer(store, profileRepo, authenticator, redisClient, nrApp, log, cfg)

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("Server exited")
}

func newAuthenticator(ctx context.Context, cfg *config.Config, fbApp *firebase.App) (auth.Authenticator, error) {
	if cfg.Auth.Provider == config.AuthProviderFirebase {
		client, err := fbApp.Auth(ctx)
		if err != nil {
			return nil, err
		}
		return auth.NewFirebaseAuthenticator(client), nil
	}
	return auth.NewJWTAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer), nil
}

// newProfileRepository selects where profiles are read from. The returned
// function releases the client it opened.
func newProfileRepository(ctx context.Context, cfg *config.Config, db *sql.DB, fbApp *firebase.App) (repository.ProfileRepository, func(), error) {
	noop := func() {}

	if cfg.Profiles.Source == config.ProfileSourceFirestore {
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, noop, err
		}
		return firestoreRepo.NewProfileRepository(client, cfg.Database.QueryTimeout), func() { client.Close() }, nil
	}

	if db != nil {
		return postgres.NewUserRepository(db, cfg.Database.QueryTimeout), noop, nil
	}

	profiles := memory.NewProfileRepository()
	for _, p := range cfg.Profiles.Seed {
		profiles.Put(&domain.Profile{
			ID:        p.ID,
			Name:      p.Name,
			Email:     p.Email,
			Phone:     p.Phone,
			City:      p.City,
			Role:      domain.Role(p.Role),
			Status:    domain.ProfileStatus(p.Status),
			CreatedAt: time.Now().UTC(),
		})
	}
	return profiles, noop, nil
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	store repository.Store,
	profileRepo repository.ProfileRepository,
	authenticator auth.Authenticator,
	redisClient redis.Cmdable,
	nrApp *newrelic.Application,
	log *logrus.Logger,
	cfg *config.Config,
) *http.Server {
	// Profiles are cached in Redis when it is available.
	var profileCache service.ProfileCache
	if redisClient != nil {
		profileCache = internalRedis.NewCacheStore(redisClient, cfg.Redis.ProfileCacheTTL)
	}

	// Initialize services.
	notificationService := service.NewNotificationService(log)
	profileService := service.NewProfileService(profileRepo, profileCache, log)
	walletService := service.NewWalletService(store, notificationService, log)
	rideService := service.NewRideService(store, walletService, notificationService, log)

	// Initialize handlers.
	rideHandler := handler.NewRideHandler(rideService, log)
	walletHandler := handler.NewWalletHandler(walletService, log)
	operatorHandler := handler.NewOperatorHandler(walletService, profileService, log)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:     rideHandler,
		WalletHandler:   walletHandler,
		OperatorHandler: operatorHandler,
		Authenticator:   authenticator,
		Profiles:        profileService,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		Logger:          log,
		OperatorKey:     cfg.Operator.APIKey,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

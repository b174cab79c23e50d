package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/andrewpaige1/eduengage-api/config"
	"github.com/andrewpaige1/eduengage-api/events"
	"github.com/andrewpaige1/eduengage-api/generator"
	"github.com/andrewpaige1/eduengage-api/graph"
	"github.com/andrewpaige1/eduengage-api/handlers"
	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/middleware"
	"github.com/andrewpaige1/eduengage-api/pathway"
	"github.com/andrewpaige1/eduengage-api/service"
	"github.com/andrewpaige1/eduengage-api/store"
)

func init() {
	// Load .env file if not in production environment
	if !strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	env, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLog, err := logger.New(env.Log.Mode, env.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer appLog.Sync()

	db, err := config.Connect(env.Database, env.IsDevelopment)
	if err != nil {
		appLog.Fatal("failed to connect database", "driver", env.Database.Driver, "error", err)
	}
	st := store.New(db, appLog)

	ctx := context.Background()
	mirror := buildMirror(ctx, env.Graph, appLog)
	defer func() {
		if err := mirror.Close(context.Background()); err != nil {
			appLog.Warn("closing graph client failed", "error", err)
		}
	}()

	notifier, closeNotifier := buildNotifier(ctx, env.Redis, appLog)
	defer closeNotifier()

	engine := pathway.NewEngine(
		pathway.WithSparkChance(env.Spark.Chance),
		pathway.WithSparkLinger(env.Spark.Linger),
	)
	pathways := service.NewPathwayService(st, engine, generator.NewCurriculumGenerator(),
		env.Layout, notifier, mirror, appLog)
	syntheses := service.NewSynthesisService(st, env.Radial, appLog)

	authMiddleware, err := middleware.EnsureValidToken(env.Auth, appLog)
	if err != nil {
		appLog.Fatal("failed to set up auth", "error", err)
	}
	syncUser := middleware.SyncUserMiddleware(st, appLog)
	protect := func(next http.Handler) http.Handler { return authMiddleware(syncUser(next)) }

	checks := map[string]handlers.Checker{"database": pingDB(db)}
	if mirror != nil {
		checks["graph"] = mirror.Ping
	}
	router := handlers.New(pathways, syntheses, appLog).Routes(protect, checks)

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(middleware.RequestLogger(appLog)(router))

	srv := &http.Server{
		Addr:         "0.0.0.0:" + env.HTTP.Port,
		Handler:      corsHandler,
		ReadTimeout:  env.HTTP.ReadTimeout,
		WriteTimeout: env.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("http server listening", "addr", srv.Addr, "env", env.Name)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLog.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("graceful shutdown failed", "error", err)
	}
}

// buildMirror returns nil when no graph database is configured or reachable.
func buildMirror(ctx context.Context, cfg config.GraphConfig, appLog *logger.Logger) *graph.Mirror {
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:      cfg.URI,
		Database: cfg.Database,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if errors.Is(err, graph.ErrMissingURI) {
		appLog.Info("graph mirror disabled", "reason", "NEO4J_URI not set")
		return nil
	}
	if err != nil {
		appLog.Warn("graph mirror disabled", "error", err)
		return nil
	}
	return graph.NewMirror(client, appLog)
}

func buildNotifier(ctx context.Context, cfg config.RedisConfig, appLog *logger.Logger) (events.Notifier, func()) {
	notifiers := events.Multi{events.NewLogNotifier(appLog)}
	if cfg.Addr == "" {
		return notifiers, func() {}
	}
	rn, err := events.NewRedisNotifier(ctx, cfg.Addr, cfg.Channel, appLog)
	if err != nil {
		appLog.Warn("redis notifier disabled", "addr", cfg.Addr, "error", err)
		return notifiers, func() {}
	}
	return append(notifiers, rn), func() {
		if err := rn.Close(); err != nil {
			appLog.Warn("closing redis failed", "error", err)
		}
	}
}

func pingDB(db *gorm.DB) handlers.Checker {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

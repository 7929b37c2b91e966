package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carebridge/internal/audit"
	"carebridge/internal/matching/handler"
	"carebridge/internal/matching/metrics"
	"carebridge/internal/matching/ports"
	"carebridge/internal/matching/progress"
	"carebridge/internal/matching/service"
	"carebridge/internal/matching/store/assignments"
	"carebridge/internal/matching/store/profiles"
	"carebridge/internal/matching/store/scorecache"
	"carebridge/internal/platform/config"
	"carebridge/internal/platform/httpserver"
	"carebridge/internal/platform/kafka"
	"carebridge/internal/platform/logger"
	"carebridge/internal/platform/middleware"
	"carebridge/internal/platform/postgres"
	"carebridge/internal/platform/redis"
	"carebridge/internal/token"
)

// profileStore is what both memory and postgres profile stores provide.
type profileStore interface {
	ports.FamilyStore
	ports.CaregiverStore
}

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in internal/matching.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Stores: PostgreSQL when DATABASE_URL is set, otherwise in-memory for
	// local development.
	var (
		familyStore     profileStore
		assignmentStore ports.AssignmentStore
	)
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		familyStore = profiles.NewPostgres(db)
		assignmentStore = assignments.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		memAssignments := assignments.NewInMemory()
		familyStore = profiles.NewInMemory(memAssignments)
		assignmentStore = memAssignments
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}

	var sink ports.ProgressSink = progress.NewMemory()
	if redisClient != nil {
		defer redisClient.Close()
		sink = progress.NewRedis(redisClient.Client)
		opts = append(opts, service.WithPriorityCache(scorecache.NewRedis(redisClient.Client)))
		log.Info("redis connected", "progress_sink", "redis")
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		log.Error("kafka producer setup failed", "error", err)
		os.Exit(1)
	}
	if producer != nil {
		defer producer.Close()
		opts = append(opts, service.WithAuditPublisher(audit.NewKafkaPublisher(producer)))
		log.Info("kafka audit publisher enabled", "topic", cfg.Kafka.AuditTopic)
	}

	svc, err := service.New(nil, familyStore, familyStore, assignmentStore, sink, opts...)
	if err != nil {
		log.Error("service setup failed", "error", err)
		os.Exit(1)
	}

	tokens := token.NewJWTService(cfg.JWTSigningKey, "carebridge", "carebridge")

	router := chi.NewRouter()
	router.Use(middleware.RequestMetadata)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				log.Warn("redis health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("redis unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireOperator(tokens, log))
		handler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting carebridge matching service", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

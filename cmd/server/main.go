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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flagdesk/internal/activity"
	activityhandler "flagdesk/internal/activity/handler"
	activitystore "flagdesk/internal/activity/store"
	"flagdesk/internal/auth"
	blacklisthandler "flagdesk/internal/blacklist/handler"
	blacklistservice "flagdesk/internal/blacklist/service"
	blackliststore "flagdesk/internal/blacklist/store"
	companyhandler "flagdesk/internal/company/handler"
	companyservice "flagdesk/internal/company/service"
	companystore "flagdesk/internal/company/store"
	"flagdesk/internal/platform/config"
	"flagdesk/internal/platform/httpserver"
	"flagdesk/internal/platform/logger"
	"flagdesk/internal/platform/metrics"
	"flagdesk/internal/platform/middleware"
	platformredis "flagdesk/internal/platform/redis"
)

// activityStore is both the recorder's sink and the lister's read side.
type activityStore interface {
	activity.Sink
	activity.EventStore
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. Postgres when a DSN is configured, in-memory otherwise so the
	// server still runs for local development.
	var (
		entryStore   blacklistservice.EntryStore
		companyStore companyservice.CompanyStore
		userStore    auth.UserStore
		eventStore   activityStore
		db           *sql.DB
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		entryStore = blackliststore.NewPostgres(db)
		companyStore = companystore.NewPostgres(db)
		userStore = auth.NewPostgresUserStore(db)
		eventStore = activitystore.NewPostgres(db)
	} else {
		log.Warn("no postgres dsn configured, using in-memory stores")
		entryStore = blackliststore.NewInMemory()
		companyStore = companystore.NewInMemory()
		userStore = auth.NewInMemoryUserStore()
		eventStore = activitystore.NewInMemory()
	}

	// Principal resolution, optionally cached in Redis.
	resolver, err := auth.NewResolver(userStore)
	if err != nil {
		log.Error("build principal resolver", "error", err)
		os.Exit(1)
	}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	principals := auth.NewCachedResolver(resolver, redisClient, log)

	// Activity pipeline. Events always land in the queryable store; a Kafka
	// sink streams them out when brokers are configured.
	sink := activity.Sink(eventStore)
	var kafkaSink *activity.KafkaSink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err = activity.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = activity.FanOut(eventStore, kafkaSink)
	}

	var recorderOpts []activity.Option
	if cfg.ActivityBuffer > 0 {
		recorderOpts = append(recorderOpts, activity.WithAsyncBuffer(cfg.ActivityBuffer))
	}
	recorder := activity.NewRecorder(sink, log, m, recorderOpts...)
	defer recorder.Close()

	// Services.
	blacklistSvc, err := blacklistservice.New(entryStore, principals, recorder,
		blacklistservice.WithLogger(log),
		blacklistservice.WithMetrics(m),
	)
	if err != nil {
		log.Error("build blacklist service", "error", err)
		os.Exit(1)
	}
	companySvc, err := companyservice.New(companyStore,
		companyservice.WithRecorder(recorder),
		companyservice.WithLogger(log),
		companyservice.WithMetrics(m),
	)
	if err != nil {
		log.Error("build company service", "error", err)
		os.Exit(1)
	}
	lister := activity.NewLister(eventStore, activitystore.QueryFields, activitystore.DefaultOrder)

	// Router.
	validator := middleware.NewHMACValidator(cfg.JWTSigningKey)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			if err := db.PingContext(req.Context()); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(req.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, log))
		blacklisthandler.New(blacklistSvc, log).Register(r)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken, log))
		companyhandler.New(companySvc, log).Register(r)
		activityhandler.New(lister, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	log.Info("starting flagdesk", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

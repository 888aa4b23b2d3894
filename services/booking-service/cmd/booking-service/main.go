package main

import (
	"context"
	"net/http"
	"time"

	"github.com/equitylawandco/lawsite/libs/config"
	"github.com/equitylawandco/lawsite/libs/consumer"
	"github.com/equitylawandco/lawsite/libs/db"
	"github.com/equitylawandco/lawsite/libs/events"
	"github.com/equitylawandco/lawsite/libs/httpx"
	"github.com/equitylawandco/lawsite/libs/inbox"
	"github.com/equitylawandco/lawsite/libs/kafkax"
	"github.com/equitylawandco/lawsite/libs/metrics"
	otelx "github.com/equitylawandco/lawsite/libs/otel"
	"github.com/equitylawandco/lawsite/libs/outbox"
	"github.com/equitylawandco/lawsite/libs/runtime"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/booking"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/confirmations"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/handlers"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/schedule"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = config.LoadDotEnv()
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	firmLoc, err := config.Location("FIRM_TIMEZONE", "UTC")
	if err != nil {
		panic(err)
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	}

	scheduleStore := schedule.NewStore(pool)
	var scheduleSource interface {
		availability.Schedule
		handlers.ScheduleStore
	} = scheduleStore
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()
		scheduleSource = schedule.NewCachedStore(scheduleStore, rdb, config.Duration("SCHEDULE_CACHE_TTL", 5*time.Minute), "lawsite:schedule", logger)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logger.Info("schedule cache enabled", "redis_addr", addr)
	}

	engine := availability.NewEngine(scheduleSource,
		availability.WithLocation(firmLoc),
		availability.WithGranularity(config.Int("SLOT_GRANULARITY_MINUTES", availability.DefaultGranularity)),
	)
	repo := storage.NewAppointmentRepository(pool)
	outboxRepo := outbox.NewRepository()
	svc := booking.NewService(repo, outboxRepo, engine, metrics.NewBookingMetrics(nil), logger)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		inboxRepo := inbox.NewRepository(pool)
		onResult := confirmations.Handler(svc, logger)
		for _, topic := range []string{events.AppointmentConfirmationSentV1, events.AppointmentConfirmationFailedV1} {
			c := consumer.New(logger, inboxRepo, consumer.Config{
				Brokers: brokers,
				GroupID: config.String("KAFKA_GROUP_ID", "booking-service"),
				Topic:   topic,
			}, onResult)
			go c.Run(ctx)
		}
	} else {
		logger.Warn("notification result consumers disabled (no kafka brokers configured)")
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	handlers.Register(mux,
		handlers.NewAppointmentHandler(svc, logger, config.Int("MAX_DAYS_AHEAD", 90)),
		handlers.NewAdminHandler(svc, logger),
		handlers.NewScheduleHandler(scheduleSource, logger),
	)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "firm_timezone", firmLoc.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

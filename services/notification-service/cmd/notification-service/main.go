package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
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
	"github.com/equitylawandco/lawsite/services/notification-service/internal/dispatch"
	"github.com/equitylawandco/lawsite/services/notification-service/internal/email"
	"github.com/equitylawandco/lawsite/services/notification-service/internal/storage"
	"github.com/equitylawandco/lawsite/services/notification-service/internal/templates"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func newSender(logger *slog.Logger) (email.Sender, error) {
	from := email.From{
		Address: config.String("EMAIL_FROM_ADDRESS", "no-reply@equitylawandco.com"),
		Name:    config.String("EMAIL_FROM_NAME", "Equity Law & Co"),
	}
	switch provider := strings.ToLower(config.String("EMAIL_PROVIDER", "log")); provider {
	case "brevo":
		key, err := config.RequiredString("BREVO_API_KEY")
		if err != nil {
			return nil, err
		}
		return email.NewBrevoSender(config.String("BREVO_API_URL", email.DefaultBrevoURL), key, from), nil
	case "sendgrid":
		key, err := config.RequiredString("SENDGRID_API_KEY")
		if err != nil {
			return nil, err
		}
		return email.NewSendGridSender(key, from)
	case "smtp":
		return email.NewSMTPSender(config.String("SMTP_HOST", "mailpit"), config.String("SMTP_PORT", "1025"), from), nil
	case "log":
		return email.NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be one of brevo, sendgrid, smtp, log (got %q)", provider)
	}
}

func main() {
	_ = config.LoadDotEnv()
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
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

	sender, err := newSender(logger)
	if err != nil {
		panic(err)
	}
	firm := templates.DefaultFirm()
	firm.Email = config.String("FIRM_CONTACT_EMAIL", firm.Email)
	firm.Website = config.String("FIRM_WEBSITE_URL", firm.Website)
	renderer, err := templates.New(firm)
	if err != nil {
		panic(err)
	}

	outboxRepo := outbox.NewRepository()
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	dispatcher := dispatch.NewDispatcher(
		sender,
		renderer,
		storage.NewRepository(pool),
		metrics.NewNotificationMetrics(nil),
		config.String("ADMIN_NOTIFICATION_EMAIL", "equitylawandco@gmail.com"),
		logger,
	)
	h := dispatch.NewHandlers(dispatcher, dispatch.NewResultWriter(pool, outboxRepo), logger)

	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		inboxRepo := inbox.NewRepository(pool)
		groupID := config.String("KAFKA_GROUP_ID", "notification-service")
		subscriptions := map[string]consumer.Handler{
			events.AppointmentBookedV1: h.Booked,
			events.ContactSubmittedV1:  h.Contact,
		}
		for topic, handle := range subscriptions {
			c := consumer.New(logger, inboxRepo, consumer.Config{
				Brokers: brokers,
				GroupID: groupID,
				Topic:   topic,
			}, handle)
			go c.Run(ctx)
		}
	} else {
		logger.Warn("event consumers disabled (no kafka brokers configured)")
	}

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "email_provider", sender.Provider())
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

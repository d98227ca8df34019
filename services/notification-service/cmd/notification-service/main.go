package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/config"
	"github.com/mike7019/Masajes-sub000/libs/db"
	"github.com/mike7019/Masajes-sub000/libs/httpx"
	"github.com/mike7019/Masajes-sub000/libs/inbox"
	"github.com/mike7019/Masajes-sub000/libs/kafkax"
	otelx "github.com/mike7019/Masajes-sub000/libs/otel"
	"github.com/mike7019/Masajes-sub000/libs/runtime"
	"github.com/mike7019/Masajes-sub000/services/notification-service/internal/dispatch"
	"github.com/mike7019/Masajes-sub000/services/notification-service/internal/email"
	"github.com/mike7019/Masajes-sub000/services/notification-service/internal/metrics"
	"github.com/mike7019/Masajes-sub000/services/notification-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
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

	loc, err := time.LoadLocation(config.String("BUSINESS_TIMEZONE", "UTC"))
	if err != nil {
		logger.Error("invalid BUSINESS_TIMEZONE", "err", err)
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

	notificationsRepo := storage.NewRepository(pool)
	if err := notificationsRepo.Migrate(ctx); err != nil {
		logger.Error("schema migration failed", "err", err)
		panic(err)
	}

	smtpPort, err := config.Port("SMTP_PORT", "1025")
	if err != nil {
		panic(err)
	}
	portNum, _ := strconv.Atoi(smtpPort)
	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:     config.String("SMTP_HOST", "mailpit"),
		Port:     portNum,
		Username: config.String("SMTP_USERNAME", ""),
		Password: config.String("SMTP_PASSWORD", ""),
		From:     config.String("SMTP_FROM", "no-reply@masajes.local"),
		UseTLS:   config.Bool("SMTP_TLS", false),
		Timeout:  config.Seconds("SMTP_TIMEOUT_SECONDS", 10*time.Second),
	})

	metrics.Register()
	dispatcher := dispatch.New(sender, notificationsRepo, logger, dispatch.Config{
		BusinessName: config.String("BUSINESS_NAME", "Masajes"),
		Location:     loc,
		FailSuffix:   config.String("NOTIFICATION_FAIL_SUFFIX", ""),
	})

	consumer := kafkax.NewConsumer(logger, inbox.NewRepository(pool), kafkax.ConsumerConfig{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "booking.notification.requested.v1"),
	}, dispatcher.Handle)
	go consumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	_ = runtime.Serve(ctx, logger, srv)
}

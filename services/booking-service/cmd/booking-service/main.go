package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/config"
	"github.com/mike7019/Masajes-sub000/libs/db"
	"github.com/mike7019/Masajes-sub000/libs/httpx"
	"github.com/mike7019/Masajes-sub000/libs/kafkax"
	otelx "github.com/mike7019/Masajes-sub000/libs/otel"
	"github.com/mike7019/Masajes-sub000/libs/outbox"
	"github.com/mike7019/Masajes-sub000/libs/runtime"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/booking"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/catalog"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/handlers"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/metrics"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func parseReminderOffsets(raw []string, logger *slog.Logger) []time.Duration {
	var offsets []time.Duration
	for _, part := range raw {
		mins, err := strconv.Atoi(part)
		if err != nil || mins <= 0 {
			logger.Warn("invalid reminder offset", "value", part)
			continue
		}
		offsets = append(offsets, time.Duration(mins)*time.Minute)
	}
	if len(offsets) == 0 {
		offsets = []time.Duration{24 * time.Hour}
	}
	return offsets
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
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

	repo := storage.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("schema migration failed", "err", err)
		panic(err)
	}
	if path := strings.TrimSpace(config.String("CATALOG_FILE", "")); path != "" {
		cat, err := catalog.Load(path)
		if err != nil {
			logger.Error("catalog load failed", "err", err, "path", path)
			panic(err)
		}
		if err := catalog.Sync(ctx, repo, cat); err != nil {
			logger.Error("catalog sync failed", "err", err)
			panic(err)
		}
		logger.Info("catalog synced", "path", path, "services", len(cat.Services))
	}

	svc := booking.NewService(repo, logger, booking.Config{
		Location:        loc,
		PhoneRegion:     config.String("PHONE_DEFAULT_REGION", "US"),
		AdminEmail:      config.String("ADMIN_EMAIL", ""),
		ReminderOffsets: parseReminderOffsets(config.List("REMINDER_OFFSETS_MINUTES", "1440,60"), logger),
	})

	outboxPublisher := outbox.NewPublisher(pool, outbox.NewRepository(), logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	if err := startGrpcServer(ctx, logger, svc); err != nil {
		logger.Error("grpc server start failed", "err", err)
		panic(err)
	}

	metrics.Register()
	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handlers.New(svc, logger).Routes(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(int64(config.Int("MAX_BODY_BYTES", 64<<10))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	_ = runtime.Serve(ctx, logger, srv, "timezone", loc.String())
}

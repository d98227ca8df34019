package main

import (
	"context"
	"net/http"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/bookingrpc"
	"github.com/mike7019/Masajes-sub000/libs/config"
	"github.com/mike7019/Masajes-sub000/libs/db"
	"github.com/mike7019/Masajes-sub000/libs/grpcx"
	"github.com/mike7019/Masajes-sub000/libs/httpx"
	"github.com/mike7019/Masajes-sub000/libs/inbox"
	"github.com/mike7019/Masajes-sub000/libs/kafkax"
	otelx "github.com/mike7019/Masajes-sub000/libs/otel"
	"github.com/mike7019/Masajes-sub000/libs/outbox"
	"github.com/mike7019/Masajes-sub000/libs/runtime"
	"github.com/mike7019/Masajes-sub000/services/scheduler-service/internal/jobs"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "scheduler-service")
	port, err := config.Port("PORT", "8087")
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

	if err := jobs.Migrate(ctx, pool); err != nil {
		logger.Error("schema migration failed", "err", err)
		panic(err)
	}

	bookingConn, err := grpcx.Dial(config.String("BOOKING_GRPC_ADDR", "booking-service:9093"), grpcx.DialOptions{
		KeepaliveTime: config.Seconds("BOOKING_GRPC_KEEPALIVE_SECONDS", 30*time.Second),
	})
	if err != nil {
		logger.Error("booking grpc client init failed", "err", err)
		panic(err)
	}
	defer func() { _ = bookingConn.Close() }()

	jobRepo := jobs.NewRepository()
	outboxRepo := outbox.NewRepository()

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	jobWorker := jobs.NewWorker(pool, jobRepo, outboxRepo, bookingrpc.NewClient(bookingConn), logger, jobs.WorkerConfig{
		Interval:      config.Seconds("SCHEDULER_INTERVAL_SECONDS", 2*time.Second),
		BatchSize:     config.Int("SCHEDULER_BATCH_SIZE", 50),
		Backoff:       config.Seconds("SCHEDULER_BACKOFF_SECONDS", 60*time.Second),
		LookupTimeout: config.Seconds("BOOKING_LOOKUP_TIMEOUT_SECONDS", 5*time.Second),
	})
	go jobWorker.Run(ctx)

	consumer := kafkax.NewConsumer(logger, inbox.NewRepository(pool), kafkax.ConsumerConfig{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "scheduler-service"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "booking.reminder.requested.v1"),
	}, jobs.NewIntake(pool, jobRepo, logger).Handle)
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
	handler = otelhttp.NewHandler(handler, "scheduler")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	_ = runtime.Serve(ctx, logger, srv)
}

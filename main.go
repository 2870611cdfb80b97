package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/config"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/consumer"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/handler"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/middleware"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/worker"
	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/database"
	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/logging"
	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/rabbitmq"
	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/shutdown"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	var expireOnce bool
	flagSet := pflag.NewFlagSet("reservation-service", pflag.ContinueOnError)
	flagSet.BoolVar(&expireOnce, "expire-once", false, "run one expiry sweep, print the count and exit")
	flagSet.StringVar(&cfg.ServerPort, "port", cfg.ServerPort, "HTTP listen port")
	flagSet.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "expiry worker interval (0 disables the worker)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)
	cfg.LogWarnings(log)

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		return err
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	tx := repository.NewTransactor(db, cfg.LockTimeout)

	if expireOnce {
		n, err := service.NewExpiryService(reservationRepo, nil, log, service.DefaultExpiryBatchSize).
			ExpireStale(context.Background(), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("expire reservations: %w", err)
		}
		fmt.Printf("Expired %d reservation(s).\n", n)
		return nil
	}

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	// Messaging is optional; without RABBITMQ_URL events are managed in the database directly.
	var publisher service.Publisher
	var consumerDone <-chan struct{}
	if cfg.RabbitURL != "" {
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq publisher: %w", err)
		}
		defer mqPublisher.Close()
		publisher = mqPublisher

		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, log)
		if err != nil {
			return fmt.Errorf("connect rabbitmq consumer: %w", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			return fmt.Errorf("start consuming: %w", err)
		}
		consumerDone = consumer.NewEventConsumer(eventRepo, log).Start(ctx, msgs)
	} else {
		log.Warn("RABBITMQ_URL not set, event sync and lifecycle messages disabled")
	}

	// Services
	reservationSvc := service.NewReservationService(tx, reservationRepo, eventRepo, publisher, log, service.Options{
		ReservationTTL:            cfg.ReservationTTL,
		PaymentReferenceMaxLength: cfg.PaymentReferenceMaxLength,
	})
	expirySvc := service.NewExpiryService(reservationRepo, publisher, log, service.DefaultExpiryBatchSize)

	workerDone := make(chan struct{})
	if cfg.SweepInterval > 0 {
		go func() {
			defer close(workerDone)
			_ = worker.NewExpiryWorker(log, expirySvc, cfg.SweepInterval).Run(ctx)
		}()
	} else {
		close(workerDone)
		log.Info("expiry worker disabled")
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	e.Use(echoMw.RequestID())
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "reservation-service"})
	})

	handler.NewReservationHandler(reservationSvc, expirySvc, time.Now).RegisterRoutes(e)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("reservation service starting", "port", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		stop()
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	<-workerDone
	if consumerDone != nil {
		<-consumerDone
	}
	return nil
}

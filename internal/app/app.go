package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"wfconsole/internal/client"
	"wfconsole/internal/config"
	"wfconsole/internal/entity"
	"wfconsole/internal/events"
	"wfconsole/internal/repository"
	"wfconsole/internal/service"
	"wfconsole/internal/store"
	httpt "wfconsole/internal/transport/http"
	"wfconsole/pkg/cache"
	"wfconsole/pkg/kafka"
	"wfconsole/pkg/logger"
	"wfconsole/pkg/metric"
	"wfconsole/pkg/storage/postgres"
	"wfconsole/pkg/storage/postgres/transaction"

	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)

	metrics := initMetrics(eg, &cfg.Metrics, log)

	db, dbErr := initDatabase(&cfg.Postgres, log)
	if dbErr != nil {
		return dbErr
	}
	defer closeDB(db)

	txManager, txErr := initTransactionManager(db, log, metrics)
	if txErr != nil {
		return txErr
	}

	codeStore, stopStore, storeErr := initCodeStore(cfg, log, metrics)
	if storeErr != nil {
		return storeErr
	}
	defer stopStore()

	publisher, stopPublisher, pubErr := initEventPublisher(cfg, log)
	if pubErr != nil {
		return pubErr
	}
	defer stopPublisher()

	pricingService := service.NewPricingService(log.With("component", "pricing service"))

	otpService := service.NewOTPService(
		codeStore,
		client.NewSMSClient(&cfg.SMS, log.With("component", "sms client"), metrics.Gateway()),
		publisher,
		log.With("component", "otp service"),
		metrics.OTP(),
		&cfg.OTP,
	)

	paymentService := service.NewPaymentService(
		client.NewHashSignerClient(
			&cfg.Payment,
			log.With("component", "hash signer client"),
			metrics.Gateway(),
		),
		repository.NewTransactionRepository(db),
		txManager,
		publisher,
		log.With("component", "payment service"),
		metrics.Payment(),
		cfg.Payment,
	)

	if serverErr := initHTTPServer(
		ctx, eg, &cfg.HTTP,
		pricingService, otpService, paymentService,
		log, metrics,
	); serverErr != nil {
		return serverErr
	}

	return waitForShutdown(eg)
}

func initMetrics(
	eg *errgroup.Group,
	cfg *config.Metrics,
	log logger.Logger,
) metric.Factory {
	metrics := metric.NewFactory()

	hostPort := net.JoinHostPort(cfg.Host, cfg.Port)
	metricsServer := &http.Server{
		Addr:              hostPort,
		Handler:           metrics.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	eg.Go(func() error {
		log.Infow("starting metrics server", "port", cfg.Port)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("app.initMetrics: %w", err)
		}
		return nil
	})

	return metrics
}

func initDatabase(cfg *config.Postgres, log logger.Logger) (*postgres.Postgres, error) {
	db, err := postgres.NewPostgres(
		cfg,
		log.With("component", "database"),
		postgres.MaxPoolSize(cfg.PoolMax),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initDatabase: %w", err)
	}
	return db, nil
}

func closeDB(db *postgres.Postgres) {
	if db != nil {
		db.Close()
	}
}

func initTransactionManager(
	db *postgres.Postgres,
	log logger.Logger,
	metrics metric.Factory,
) (transaction.Manager, error) {
	txManager, err := transaction.NewManager(
		db,
		log.With("component", "transaction manager"),
		metrics.Transaction(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initTransactionManager: %w", err)
	}
	return txManager, nil
}

// initCodeStore selects the OTP backend: the in-process TTL LRU for single
// instances, redis when codes must be shared across replicas.
func initCodeStore(
	cfg *config.Config,
	log logger.Logger,
	metrics metric.Factory,
) (service.CodeStore, func(), error) {
	if cfg.OTP.Store == "redis" {
		redisStore, err := store.NewRedisCodeStore(&cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("app.initCodeStore: %w", err)
		}
		return redisStore, func() { _ = redisStore.Close() }, nil
	}

	otpCache, err := cache.NewLRUCache[string, *entity.OTPRecord](
		"otp",
		cfg.Cache.Capacity,
		log.With("component", "otp cache"),
		metrics.Cache(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("app.initCodeStore: %w", err)
	}
	otpCache.StartCleanup(cfg.Cache.CleanupInterval)

	return store.NewMemoryCodeStore(otpCache), otpCache.StopCleanup, nil
}

func initEventPublisher(
	cfg *config.Config,
	log logger.Logger,
) (service.EventPublisher, func(), error) {
	if !cfg.Events.Enabled {
		return events.NopPublisher{}, func() {}, nil
	}

	writer, err := kafka.NewWriter(cfg.Events, log.With("component", "kafka writer"))
	if err != nil {
		return nil, nil, fmt.Errorf("app.initEventPublisher: %w", err)
	}

	publisher := events.NewKafkaPublisher(writer, log.With("component", "event publisher"))
	return publisher, func() { _ = publisher.Close() }, nil
}

func initHTTPServer(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.HTTP,
	pricingService *service.PricingService,
	otpService *service.OTPService,
	paymentService *service.PaymentService,
	log logger.Logger,
	metrics metric.Factory,
) error {
	httpServer, err := httpt.NewHTTPServer(
		httpt.NewConsoleHandler(pricingService, otpService, paymentService, log, metrics.HTTP()),
		cfg,
		log.With("component", "http server"),
	)
	if err != nil {
		return fmt.Errorf("app.initHTTPServer: %w", err)
	}

	eg.Go(func() error {
		return httpServer.Start(ctx)
	})
	return nil
}

func waitForShutdown(eg *errgroup.Group) error {
	if err := eg.Wait(); err != nil && !isShutdownSignal(err) {
		return fmt.Errorf("app.waitForShutdown: application failed: %w", err)
	}
	return nil
}

func isShutdownSignal(err error) bool {
	return err != nil && err.Error() == "shutdown signal"
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/kisanpay/kisanpay/internal/config"
	"github.com/kisanpay/kisanpay/internal/processor"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/kisanpay/kisanpay/pkg/pg"
	"github.com/kisanpay/kisanpay/pkg/prom"
	"github.com/kisanpay/kisanpay/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(config.EnvPathFromArgs(os.Args))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	if err = logger.Configure(cfg.Logger()); err != nil {
		logger.Error("failed to configure logger", "error", err)
		return
	}
	logger.Info("starting billing processor", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.IsDev())
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, cfg.Redis())
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	billingRepo := repository.NewBillingRepository(db)

	idemConfig := processor.DefaultIdempotencyConfig()
	idemConfig.MaxRetries = cfg.QueueMaxRetries
	idempotencyService := processor.NewIdempotencyService(redisAdap, idemConfig)

	service := processor.NewProcessorService(redisAdap, processor.Options{
		Queue:     cfg.LedgerQueue(),
		Consumers: cfg.QueueConsumers,
		Workers:   cfg.QueueWorkers,
	})
	service.RegisterProcessor(processor.NewBillingProcessor(billingRepo, idempotencyService))

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(cfg.MetricsListenAddr, "/metrics")
	}()

	if err = service.Start(); err != nil {
		logger.Error("failed to start processor", "error", err)
		return
	}

	<-c
	service.Stop()
}

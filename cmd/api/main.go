package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kisanpay/kisanpay/internal/config"
	"github.com/kisanpay/kisanpay/internal/handlers"
	"github.com/kisanpay/kisanpay/internal/queue"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/kisanpay/kisanpay/internal/services"
	xhttp "github.com/kisanpay/kisanpay/pkg/http"
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
	logger.Info("starting api", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	s := xhttp.NewServer(cfg.HTTPLimits())
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(cfg.RequestTimeout))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)

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

	q, err := queue.NewQueue(redisAdap, cfg.LedgerQueue())
	if err != nil {
		logger.Error("failed creating ledger queue", "error", err)
		return
	}
	events := queue.NewLedgerPublisher(q)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(cfg.MetricsListenAddr, "/metrics")

	customerRepo := repository.NewCustomerRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	loanRepo := repository.NewLoanRepository(db)

	// services
	ledgerService := services.NewLedgerService(db, customerRepo, accountRepo, transactionRepo, events)
	marketplaceService := services.NewMarketplaceService(services.MarketplaceDeps{
		UnitOfWork:   db,
		Customers:    customerRepo,
		Accounts:     accountRepo,
		Transactions: transactionRepo,
		Products:     productRepo,
		Inventory:    inventoryRepo,
		Orders:       orderRepo,
		Events:       events,
	})
	loanService := services.NewLoanService(db, loanRepo, accountRepo, repository.NewManagerRepository(db))

	// v1 handlers
	g := s.Router.Group("/api/v1")
	handlers.RegisterCustomerRoutes(g, handlers.NewCustomerHandler(ledgerService))
	handlers.RegisterMarketplaceRoutes(g, handlers.NewMarketplaceHandler(marketplaceService))
	handlers.RegisterLoanRoutes(g, handlers.NewLoanHandler(loanService))
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": db,
		"redis":    redisAdap,
	}))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(cfg.HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Error("http-server did not shut down cleanly", "error", err)
	}
}

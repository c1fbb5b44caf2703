package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kisanpay/kisanpay/internal/admin"
	"github.com/kisanpay/kisanpay/internal/config"
	"github.com/kisanpay/kisanpay/internal/queue"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/kisanpay/kisanpay/internal/services"
	"github.com/kisanpay/kisanpay/pkg/pg"
	"github.com/kisanpay/kisanpay/pkg/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.Load(config.EnvPathFromArgs(os.Args)); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	cfg := config.Get()
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.IsDev())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed connecting to postgres")
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, cfg.Redis())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed connecting to redis")
	}
	q, err := queue.NewQueue(redisAdap, cfg.LedgerQueue())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed creating ledger queue")
	}
	events := queue.NewLedgerPublisher(q)

	customerRepo := repository.NewCustomerRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	ledger := services.NewLedgerService(db, customerRepo, accountRepo, transactionRepo, events)
	market := services.NewMarketplaceService(services.MarketplaceDeps{
		UnitOfWork:   db,
		Customers:    customerRepo,
		Accounts:     accountRepo,
		Transactions: transactionRepo,
		Products:     repository.NewProductRepository(db),
		Inventory:    repository.NewInventoryRepository(db),
		Orders:       repository.NewOrderRepository(db),
		Events:       events,
	})
	loans := services.NewLoanService(db, repository.NewLoanRepository(db), accountRepo, repository.NewManagerRepository(db))

	router := admin.SetupRouter(admin.NewHandler(ledger, market, loans))

	srv := &http.Server{
		Addr:         cfg.AdminListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Admin console started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down admin console...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Admin console exited")
}

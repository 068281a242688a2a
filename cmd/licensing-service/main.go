package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhoini/licensing-backend/internal/api/rest"
	"github.com/Dhoini/licensing-backend/internal/config"
	"github.com/Dhoini/licensing-backend/internal/integration/nbp"
	"github.com/Dhoini/licensing-backend/internal/kafka"
	"github.com/Dhoini/licensing-backend/internal/metrics"
	"github.com/Dhoini/licensing-backend/internal/repository/postgres"
	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := initLogger()

	log.Infow("Licensing service starting up...")

	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := postgres.NewStore(ctx, cfg.Database.DSN, log)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer store.Close()
	log.Infow("Database connection established")

	clientRepo := postgres.NewClientRepository(store, log)
	softwareRepo := postgres.NewSoftwareRepository(store, log)
	contractRepo := postgres.NewContractRepository(store, log)

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		log.Errorw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
		producer = kafka.NopProducer{}
	} else {
		log.Infow("Kafka producer initialized")
		defer func() {
			if err := producer.Close(); err != nil {
				log.Errorw("Error closing Kafka producer", "error", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	contractMetrics := metrics.NewContractMetrics(registry, log)

	nbpClient := nbp.NewClient(nbp.Config{
		BaseURL: cfg.NBP.BaseURL,
		Timeout: cfg.NBP.Timeout,
	}, log)

	var rates service.RateProvider = nbpClient
	cachedRates, err := nbp.NewCachedRateProvider(
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
		nbpClient,
		log,
	)
	if err != nil {
		log.Warnw("Failed to initialize Redis rate cache, continuing without caching", "error", err)
	} else {
		log.Infow("Redis rate cache initialized")
		rates = cachedRates
		defer func() {
			if err := cachedRates.Close(); err != nil {
				log.Errorw("Error closing Redis connection", "error", err)
			}
		}()
	}

	svcs := rest.Services{
		Clients:   service.NewClientService(clientRepo, store, log),
		Catalog:   service.NewCatalogService(softwareRepo, log),
		Contracts: service.NewContractService(contractRepo, clientRepo, softwareRepo, store, producer, contractMetrics, log),
		Profit:    service.NewProfitService(contractRepo, softwareRepo, rates, cfg.Profit.BaseCurrency, log),
	}

	router := rest.SetupRouter(log, registry, svcs)
	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Infow("HTTP server gracefully stopped")
	}

	log.Infow("Cleanup finished. Goodbye!")
}

func initLogger() *logger.Logger {
	logLevel := logger.INFO
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = logger.DEBUG
	}
	return logger.New(logLevel)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/gateway"
	"github.com/example/storefront/pkg/admin"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/discovery"
	"github.com/example/storefront/pkg/grpc"
	"github.com/example/storefront/pkg/message"
	"github.com/example/storefront/pkg/messaging"
	"github.com/example/storefront/pkg/order"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/storefront"
)

func main() {
	path := os.Getenv("STOREFRONT_CONFIG")
	if path == "" {
		path = "config/config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting storefront",
		zap.String("name", cfg.Server.Name),
		zap.String("store", cfg.Store.Driver),
		zap.Int("http_port", cfg.Gateway.Port),
		zap.Int("grpc_port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open order store", zap.Error(err))
	}
	defer closeStore()

	health := grpc.NewHealthServer(cfg, logger.Named("health"))
	health.AddProbe("storefront.OrderStore", store, true)

	var (
		listeners []order.Listener
		audit     gateway.AuditTrail
	)

	if cfg.MongoDB.Enabled {
		mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			logger.Warn("Failed to connect to MongoDB, continuing without audit log", zap.Error(err))
		} else {
			defer func() {
				closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer closeCancel()
				mongoRepo.Close(closeCtx)
			}()
			listeners = append(listeners, mongoRepo)
			audit = mongoRepo
			health.AddProbe("storefront.AuditLog", mongoRepo, false)
		}
	}

	if cfg.Kafka.Enabled {
		publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer publisher.Close()
		listeners = append(listeners, messaging.NewOrderEvents(publisher, cfg.Kafka.CreatedTopic, cfg.Kafka.StatusTopic))
	}

	var cache storefront.CartCache
	if cfg.Redis.Enabled {
		redisRepo := repository.NewRedisRepository(&cfg.Redis)
		defer redisRepo.Close()
		if err := redisRepo.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed", zap.Error(err))
		} else {
			logger.Info("Redis connected successfully")
		}
		cache = redisRepo
		health.AddProbe("storefront.CartCache", redisRepo, false)
	}

	manager := order.NewManager(store, logger.Named("orders"), listeners...)
	if err := manager.Load(ctx); err != nil {
		logger.Error("Initial order load failed", zap.Error(err))
	}

	cat, err := catalog.FromConfig(&cfg.Shop)
	if err != nil {
		logger.Fatal("Invalid product catalog", zap.Error(err))
	}

	notifier, err := admin.NewNotifier(logger.Named("notifier"))
	if err != nil {
		logger.Fatal("Failed to start notification actor", zap.Error(err))
	}
	defer notifier.Close()

	formatter := message.NewFormatter(cfg.Shop.Name, cfg.Shop.Recipient, cfg.Shop.LocalTown, cfg.Shop.DialPrefix)
	controller := admin.NewController(manager, formatter, notifier, logger.Named("admin"), cfg.Shop.DeliveryFee, cfg.Shop.TopItems)
	sessions := storefront.NewRegistry(cfg.Shop.LocalTown, cache, logger.Named("sessions"))
	co := storefront.NewCheckout(manager, formatter, logger.Named("checkout"))

	gw := gateway.NewGateway(cfg, logger.Named("gateway"), cat, sessions, co, controller, notifier, audit)
	gw.SetupRoutes()

	errCh := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			errCh <- fmt.Errorf("gateway: %w", err)
		}
	}()
	go func() {
		if err := health.Start(); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()
	go health.Run(ctx, cfg.Store.ProbeInterval)

	var sd *discovery.ServiceDiscovery
	instance := &discovery.ServiceInstance{
		Name:     cfg.Server.Name,
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		HTTPPort: cfg.Gateway.Port,
	}
	if cfg.Etcd.Enabled {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, logger.Named("discovery"))
		if err != nil {
			logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		} else if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd",
				zap.String("name", instance.Name),
				zap.String("address", fmt.Sprintf("%s:%d", instance.Host, instance.Port)))
		}
	}

	logger.Info("Storefront started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		logger.Error("Server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if sd != nil {
		if err := sd.Deregister(shutdownCtx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}
	health.Stop()
	cancel()

	logger.Info("Storefront stopped")
}

type closableStore interface {
	order.Store
	Close() error
}

func openStore(cfg *config.Config) (order.Store, func(), error) {
	var (
		store closableStore
		err   error
	)
	switch cfg.Store.Driver {
	case "memory":
		return repository.NewMemoryOrderStore(), func() {}, nil
	case "postgres":
		store, err = repository.NewPostgresOrderStore(&cfg.Postgres)
	default:
		store, err = repository.NewMySQLOrderStore(&cfg.MySQL)
	}
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if err := zc.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	return zc.Build()
}

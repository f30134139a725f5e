package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fekuna/omnipos-invoice-service/config"
	"github.com/fekuna/omnipos-invoice-service/internal/broker"
	"github.com/fekuna/omnipos-invoice-service/internal/cache"
	"github.com/fekuna/omnipos-invoice-service/internal/invoice"
	"github.com/fekuna/omnipos-invoice-service/internal/product"
	"github.com/fekuna/omnipos-invoice-service/internal/search"
	"github.com/fekuna/omnipos-invoice-service/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	custH "github.com/fekuna/omnipos-invoice-service/internal/customer/handler"
	custRepoPkg "github.com/fekuna/omnipos-invoice-service/internal/customer/repository"
	custUCPkg "github.com/fekuna/omnipos-invoice-service/internal/customer/usecase"

	invH "github.com/fekuna/omnipos-invoice-service/internal/invoice/handler"
	invRepoPkg "github.com/fekuna/omnipos-invoice-service/internal/invoice/repository"
	invUCPkg "github.com/fekuna/omnipos-invoice-service/internal/invoice/usecase"

	prodH "github.com/fekuna/omnipos-invoice-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-invoice-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-invoice-service/internal/product/usecase"

	userH "github.com/fekuna/omnipos-invoice-service/internal/user/handler"
	userRepoPkg "github.com/fekuna/omnipos-invoice-service/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-invoice-service/internal/user/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health endpoint",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. Configuration and logger
	cfg := config.LoadEnv()
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	// 2. Database
	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("Could not connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	// 3. Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Error("Could not connect to Redis", zap.Error(err))
		return err
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	snapshots := cache.NewCatalogStore(redisClient, cfg.Session.TTL)
	guard := cache.NewSaveGuard(redisClient, cfg.Session.SaveLockTTL)

	// 4. Kafka
	var events interface {
		invoice.EventPublisher
		Close() error
	} = broker.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		events = broker.NewKafkaPublisher(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		appLogger.Info("Kafka publisher ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		appLogger.Warn("KAFKA_BROKERS not set, invoice events are dropped")
	}
	defer events.Close()

	// 5. Elasticsearch
	var indexer product.Indexer
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, product search sync disabled", zap.Error(err))
		} else {
			indexer = search.NewProductIndexer(esClient)
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Repositories and usecases
	prodUC := prodUCPkg.NewProductUseCase(prodRepoPkg.NewSQLRepository(db), indexer, appLogger)
	custUC := custUCPkg.NewCustomerUseCase(custRepoPkg.NewSQLRepository(db), appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepoPkg.NewSQLRepository(db), appLogger)
	invUC := invUCPkg.NewInvoiceUseCase(invRepoPkg.NewSQLRepository(db), prodUC, snapshots, guard, events, appLogger)

	// 7. HTTP
	router := server.NewRouter(appLogger,
		invH.NewInvoiceHandler(invUC, appLogger),
		prodH.NewProductHandler(prodUC, appLogger),
		custH.NewCustomerHandler(custUC, appLogger),
		userH.NewUserHandler(userUC, appLogger),
	)
	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 8. gRPC health
	lis, err := net.Listen("tcp", normalizePort(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Error("failed to listen", zap.Error(err))
		return err
	}
	grpcServer, healthServer := server.NewGRPCServer(appLogger)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 2)
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// Graceful Shutdown
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		appLogger.Error("server failed", zap.Error(serveErr))
	}

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")

	return serveErr
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

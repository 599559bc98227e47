package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/pos-checkout/internal/adapter/handler"
	"github.com/rl1809/pos-checkout/internal/adapter/storage"
	"github.com/rl1809/pos-checkout/internal/config"
	"github.com/rl1809/pos-checkout/internal/core/service"
	"github.com/rl1809/pos-checkout/internal/logging"
	"github.com/rl1809/pos-checkout/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.MySQLMaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQLMaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQLConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: cfg.RedisPoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}
	redisAdapter := storage.NewRedisAdapter(rdb)
	catalog := storage.NewCachedCatalog(mysqlAdapter, redisAdapter, cfg.CatalogCacheTTL, logger.Named("catalog"))

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize service
	checkoutService := service.NewCheckoutService(catalog, mysqlAdapter, redisAdapter, service.Config{
		Rates:         cfg.Rates(),
		EnforceStock:  cfg.EnforceStock,
		SubmitLockTTL: cfg.SubmitLockTTL,
		SubmitTimeout: cfg.SubmitTimeout,
		IdleTTL:       cfg.SessionIdleTTL,
	}, logger.Named("checkout"), service.WithObserver(m))

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(1).Minute().Do(func() {
		if n := checkoutService.ExpireIdle(time.Now()); n > 0 {
			logger.Info("expired idle sessions", zap.Int("count", n), zap.Int("open", checkoutService.SessionCount()))
		}
	}); err != nil {
		logger.Fatal("failed to schedule idle sweep", zap.Error(err))
	}
	scheduler.StartAsync()

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(m.UnaryServerInterceptor()))
	handler.RegisterCheckoutServer(grpcServer, handler.NewGRPCHandler(checkoutService))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(handler.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Start gRPC server
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), m.GinMiddleware(), cors.New(corsConfig(cfg.CORSOrigins)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.NewHTTPHandler(checkoutService, logger.Named("http")).Register(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	healthServer.Shutdown()

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	// Stop gRPC server
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	scheduler.Stop()

	// Close connections
	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

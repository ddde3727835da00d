package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cuahang/cuahang/config"
	"cuahang/cuahang/controllers"
	"cuahang/cuahang/middlewares"
	"cuahang/cuahang/routes"
	"cuahang/cuahang/services/broker"
	"cuahang/cuahang/sources/psql"
	"cuahang/cuahang/sources/psql/dao"
	"cuahang/cuahang/sources/storage"
	"cuahang/cuahang/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := psql.NewDatabase(dbCtx, cfg)
	cancel()
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	userDAO := dao.NewUserDAO(db.DB)
	storeDAO := dao.NewStoreDAO(db.DB)
	chatDAO := dao.NewChatMessageDAO(db.DB)
	orderDAO := dao.NewOrderDAO(db.DB)

	// Chat fan-out: in-process unless Redis is configured.
	hub := broker.NewHub()
	var deliverer broker.Deliverer = hub
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logging.ErrorLogger.Error("redis connection error", zap.Error(err))
			os.Exit(1)
		}
		relay := broker.NewRedisRelay(rdb, hub)
		deliverer = relay
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.ErrorLogger.Error("chat relay stopped", zap.Error(err))
			}
		}()
	}

	authCtrl := controllers.NewAuthController(userDAO, cfg)
	userCtrl := controllers.NewUserController(userDAO)
	storesCtrl := controllers.NewStoresController(storeDAO)
	chatCtrl := controllers.NewChatController(chatDAO, userDAO, storeDAO, hub, deliverer)
	salesCtrl := controllers.NewSalesController(orderDAO, storeDAO, userDAO)
	sqlDB, err := db.DB.DB()
	if err != nil {
		logging.ErrorLogger.Error("database handle error", zap.Error(err))
		os.Exit(1)
	}
	healthCtrl := controllers.NewHealthController(sqlDB)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/auth", routes.AuthRoutes(authCtrl))
	r.Mount("/users", routes.UserRoutes(userCtrl, cfg))
	r.Mount("/stores", routes.StoreRoutes(storesCtrl, cfg))
	r.Mount("/chat", routes.ChatRoutes(chatCtrl, cfg))
	r.Mount("/vendor", routes.SalesRoutes(salesCtrl, cfg))
	r.Mount("/qrcode", routes.QRCodeRoutes(controllers.NewQRController()))

	if cfg.MinIOEndpoint != "" {
		minioClient, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
		r.Mount("/files", routes.FileRoutes(controllers.NewFilesController(minioClient), cfg))
	} else {
		logging.AppLogger.Warn("MINIO_ENDPOINT not set, chat file upload disabled")
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
		return
	}
	logging.AppLogger.Info("server shutdown complete")
}

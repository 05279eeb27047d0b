// cmd/cartera/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cartera-service/internal/api/handlers"
	"cartera-service/internal/api/middleware"
	"cartera-service/internal/api/responses"
	"cartera-service/internal/config"
	"cartera-service/internal/core/cartera"
	"cartera-service/internal/logger"
	"cartera-service/internal/observability"
	"cartera-service/internal/storage/ratestore"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "cartera-service"

func initFirestoreClient(ctx context.Context, cfg *config.Config) (*firestore.Client, error) {
	client, err := firestore.NewClientWithDatabase(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	if err != nil {
		return nil, fmt.Errorf("error al iniciar el cliente de firestore: %w", err)
	}
	return client, nil
}

// newRateStore elige el almacén de TRM. La función devuelta libera sus recursos.
func newRateStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (cartera.RateStore, func(), error) {
	if cfg.RatesBackend == config.BackendFirestore {
		client, err := initFirestoreClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		l.Info("TRM en firestore",
			zap.String("project", cfg.FirestoreProject),
			zap.String("collection", cfg.FirestoreCollection),
			zap.String("document", cfg.FirestoreDocument))
		store := ratestore.NewFirestoreStore(client, cfg.FirestoreCollection, cfg.FirestoreDocument, l)
		return store, func() { client.Close() }, nil
	}
	l.Info("TRM en archivo", zap.String("path", cfg.RatesFile))
	return ratestore.NewFileStore(cfg.RatesFile, l), func() {}, nil
}

func newRouter(cfg *config.Config, svc cartera.Service, metrics *observability.Metrics) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware())
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	carteraHandler := handlers.NewCarteraHandler(svc)
	apiV1 := router.Group("/api/v1", middleware.RunID(), middleware.RequireJWT([]byte(cfg.JWTSecret)))
	carteraHandler.Register(apiV1)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": serviceName})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	return router
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("no se pudo cargar .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuración: %v", err)
	}
	l, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer l.Sync()
	responses.InitLogger(logger.Component(l, "api"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lines, err := cartera.LoadLineTable(cfg.LinesFile)
	if err != nil {
		l.Fatal("tabla de líneas de negocio", zap.Error(err))
	}
	store, closeStore, err := newRateStore(ctx, cfg, logger.Component(l, "ratestore"))
	if err != nil {
		l.Fatal("almacén de TRM", zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	svc := cartera.NewService(logger.Component(l, "cartera"),
		cartera.WithLineTable(lines),
		cartera.WithCountry(cfg.Country),
		cartera.WithRateStore(store),
		cartera.WithRecorder(metrics),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, svc, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		l.Info("servicio de cartera escuchando", zap.String("addr", srv.Addr), zap.Int("lines", len(lines.Codes())))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal("falla del servidor", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("apagado", zap.Error(err))
	}
	l.Info("servicio de cartera detenido")
}

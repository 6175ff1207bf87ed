package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/campusprint/print-service/internal/es"
	"github.com/campusprint/print-service/internal/events"
	"github.com/campusprint/print-service/internal/gateway"
	"github.com/campusprint/print-service/internal/httpserver"
	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/repo"
	"github.com/campusprint/print-service/internal/service"
	"github.com/campusprint/print-service/internal/storage"
	"github.com/campusprint/print-service/pkg/config"
	"github.com/campusprint/print-service/pkg/db"
	"github.com/campusprint/print-service/pkg/logging"
	loggingmw "github.com/campusprint/print-service/pkg/middleware/logging"
)

const ordersIndex = "orders"

func main() {
	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.RazorpayKeyID, "RAZORPAY_KEY_ID")
	config.MustNonEmpty(cfg.RazorpayKeySecret, "RAZORPAY_KEY_SECRET")
	config.MustNonEmpty(cfg.MinioEndpoint, "MINIO_ENDPOINT")
	config.MustNonEmpty(cfg.MinioAccessKey, "MINIO_ACCESS_KEY")
	config.MustNonEmpty(cfg.MinioSecretKey, "MINIO_SECRET_KEY")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	httpserver.DevMode = cfg.DevMode

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}, &models.Order{}, &models.Payment{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	blobs, err := storage.NewMinioStore(initCtx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("blob store init error: %v", err)
	}

	prod := events.NewProducer(cfg.KafkaBrokers)

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	}

	gw := gateway.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	authSvc := &service.AuthService{
		Users:     &repo.UserRepo{DB: database},
		JWTSecret: cfg.JWTSecret,
	}
	orderSvc := &service.OrderService{
		Repo:      &repo.OrderRepo{DB: database},
		Blobs:     blobs,
		Producer:  prod,
		ES:        esClient,
		ESIndex:   ordersIndex,
		Locations: cfg.PickupLocations,
	}
	paymentSvc := &service.PaymentService{
		Repo:     &repo.PaymentRepo{DB: database},
		Gateway:  gw,
		Producer: prod,
	}
	reconcileSvc := &service.ReconcileService{
		Payments:  paymentSvc,
		Orders:    orderSvc,
		Gateway:   gw,
		KeySecret: []byte(cfg.RazorpayKeySecret),
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc, ES: esClient, ESIndex: ordersIndex},
		PaymentHandler: &httpserver.PaymentHTTP{Svc: paymentSvc, Reconcile: reconcileSvc, KeyID: cfg.RazorpayKeyID},
		JWTSecret:      cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

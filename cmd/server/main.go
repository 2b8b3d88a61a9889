package main

import (
	"log"
	"net/http"

	"churpay/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"churpay/internal/auth"
	"churpay/internal/cache"
	"churpay/internal/config"
	"churpay/internal/db"
	"churpay/internal/handler"
	"churpay/internal/mailer"
	"churpay/internal/model"
	"churpay/internal/payfast"
	"churpay/internal/repository"
	"churpay/internal/router"
	"churpay/internal/service"
)

// @title Churpay Backend API
// @version 1.0
// @description Donation collection backend with PayFast payments, IPN verification and an admin dashboard API.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.Payment{},
		&model.IpnEvent{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	paymentRepo := repository.NewPaymentRepository(gormDB)
	ipnEventRepo := repository.NewIpnEventRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(cfg, jwtService, tokenStore)
	intentService := service.NewIntentService(paymentRepo, cacheClient, cfg)
	reconcileService := service.NewReconcileService(
		paymentRepo,
		ipnEventRepo,
		intentService,
		payfast.NewGatewayValidator(cfg.PayFast.IsLive()),
		mailer.FromConfig(cfg.SMTP),
		cfg.PayFast,
	)
	paymentService := service.NewPaymentService(paymentRepo, ipnEventRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	payfastHandler := handler.NewPayfastHandler(intentService, reconcileService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Register routes
	router.Register(e, cfg, authHandler, payfastHandler, paymentHandler)

	if !cfg.PayFast.IsConfigured() {
		log.Println("warning: PAYFAST_MERCHANT_ID/PAYFAST_MERCHANT_KEY not set, initiation disabled")
	}
	log.Printf("payfast mode=%s", cfg.PayFast.Mode)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

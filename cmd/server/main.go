package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/thumbsmith/thumbsmith/internal/auth"
	"github.com/thumbsmith/thumbsmith/internal/config"
	"github.com/thumbsmith/thumbsmith/internal/database"
	"github.com/thumbsmith/thumbsmith/internal/gemini"
	"github.com/thumbsmith/thumbsmith/internal/hf"
	"github.com/thumbsmith/thumbsmith/internal/httpapi"
	"github.com/thumbsmith/thumbsmith/internal/mailer"
	"github.com/thumbsmith/thumbsmith/internal/razorpay"
	"github.com/thumbsmith/thumbsmith/internal/repository"
	"github.com/thumbsmith/thumbsmith/internal/service"
	"github.com/thumbsmith/thumbsmith/internal/storage"
	"github.com/thumbsmith/thumbsmith/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	thumbRepo := repository.NewThumbnailRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	hfClient := hf.NewClient(cfg, logr)
	geminiClient := gemini.NewClient(cfg, logr)
	razorpayClient := razorpay.NewClient(cfg, logr)
	if !cfg.RazorpayConfigured() {
		logr.Info("razorpay not configured, premium upgrades disabled")
	}
	mail := mailer.New(cfg, logr)

	var uploader service.Uploader
	if cfg.S3Configured() {
		up, err := storage.NewUploader(cfg)
		if err != nil {
			log.Fatalf("storage uploader: %v", err)
		}
		uploader = up
		logr.Info("s3 uploads enabled", "bucket", cfg.S3Bucket)
	} else {
		logr.Info("s3 not configured, images will be stored inline")
	}

	authService := service.NewAuthService(userRepo, tokens)
	generationService := service.NewGenerationService(logr, userRepo, thumbRepo, geminiClient, hfClient, uploader, mail, cfg.FreeGenerationLimit)
	paymentService := service.NewPaymentService(logr, userRepo, paymentRepo, razorpayClient, mail, cfg.PremiumPriceMinor, cfg.PaymentCurrency)
	adminService := service.NewAdminService(logr, userRepo, thumbRepo, paymentRepo)

	server := httpapi.NewServer(cfg.ListenAddr, logr, tokens, authService, generationService, paymentService, adminService)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("server stopped", "err", err)
	}
}

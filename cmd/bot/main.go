package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rostro-bot/internal/config"
	"rostro-bot/internal/db"
	apihttp "rostro-bot/internal/http"
	"rostro-bot/internal/limiter"
	"rostro-bot/internal/llm"
	"rostro-bot/internal/payment"
	"rostro-bot/internal/repository"
	"rostro-bot/internal/service"
	"rostro-bot/internal/telegram"
	"rostro-bot/internal/vision"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	paymentRepo := repository.NewPgPaymentRepository(pool)
	historyRepo := repository.NewPgHistoryRepository(pool)

	detector, err := vision.NewHaarDetector(cfg.CascadeDir)
	if err != nil {
		logger.Fatal("load cascades", zap.Error(err))
	}
	defer detector.Close()

	validator := service.NewImageValidator(cfg.MaxImageSizeBytes)
	extractor := service.NewFeatureExtractor(validator, detector)
	scorer := service.NewPersonalityScorer(nil)
	entitlements := service.NewEntitlementService(logger, userRepo)

	var visionScorer *service.VisionScorer
	if cfg.LLMAPIKey != "" {
		client := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel,
			time.Duration(cfg.LLMTimeoutSeconds)*time.Second, logger)
		visionScorer = service.NewVisionScorer(client, time.Duration(cfg.LLMTimeoutSeconds)*time.Second, logger)
	} else {
		logger.Warn("llm api key not configured, vip analysis uses heuristics")
	}

	photoLimiter := limiter.New(
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
		cfg.RateLimitMaxRequests,
	)
	photoSvc := service.NewPhotoService(logger, photoLimiter, extractor, scorer, visionScorer, entitlements, historyRepo)

	var payLimiter service.PaymentLinkLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			payLimiter = service.NewRedisPaymentLinkLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	var (
		linkProvider payment.LinkProvider
		verifier     payment.Verifier
	)
	if cfg.ZarinpalMerchantID != "" {
		zp := payment.NewZarinPal(cfg.ZarinpalMerchantID, cfg.ZarinpalCallbackURL,
			cfg.VipPriceToman, cfg.ZarinpalSandbox, paymentRepo, logger)
		linkProvider = zp
		verifier = zp
	} else {
		logger.Warn("payment gateway not configured")
		linkProvider = payment.NewDisabledProvider("pasarela de pago no configurada")
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, logger, photoSvc, entitlements, linkProvider, payLimiter)
	if err != nil {
		logger.Fatal("telegram connect", zap.Error(err))
	}

	var notifier apihttp.Notifier
	if verifier != nil {
		notifier = bot
	}
	paymentHandler := apihttp.NewPaymentHandler(logger, paymentRepo, verifier, entitlements, notifier, cfg.VipDays)
	router := apihttp.NewRouter(logger, pool, paymentHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting http server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	bot.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"telegram-premium-bot/internal/application"
	"telegram-premium-bot/internal/config"
	tele "telegram-premium-bot/internal/infra/adapters/telegram"
	pg "telegram-premium-bot/internal/infra/db/postgres"
	httpapi "telegram-premium-bot/internal/infra/http"
	"telegram-premium-bot/internal/infra/logging"
	"telegram-premium-bot/internal/infra/metrics"
	red "telegram-premium-bot/internal/infra/redis"
	"telegram-premium-bot/internal/infra/sched"
	"telegram-premium-bot/internal/infra/web"
	"telegram-premium-bot/internal/infra/worker"
	"telegram-premium-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	keyRepo := pg.NewKeyRepo(pool)
	redeemRepo := pg.NewRedeemRequestRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Worker pool (broadcast fan-out) ----
	workerPool := worker.NewPool(cfg.Broadcast.Workers, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	// ---- Telegram adapter (constructed before usecases that send) ----
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	keyUC := usecase.NewKeyUseCase(keyRepo, cfg.Keys.Length, logger)
	accountUC := usecase.NewAccountUseCase(
		userRepo, keyRepo, redeemRepo, txManager, locker,
		cfg.Bot.AdminID, cfg.Bot.DevContact, logger,
	)

	facade := application.NewBotFacade(userUC, accountUC, keyUC, nil)
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	adminUC := usecase.NewAdminUseCase(userRepo, botAdapter, workerPool, cfg.Bot.AdminID, cfg.Broadcast.PerSecond, logger)
	facade.AdminUC = adminUC

	go func() {
		if err := botAdapter.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("telegram update loop stopped")
		}
	}()

	// ---- Admin web API + HTTP server ----
	var adminRouter http.Handler
	if cfg.Web.JWTSecret != "" && cfg.Web.APIKey != "" {
		adminRouter = web.NewServer(cfg.Web, userUC, keyUC, adminUC, redeemRepo, logger).Router()
	} else {
		logger.Warn().Msg("web.api_key/jwt_secret not set; admin API disabled")
	}

	var webhook http.Handler
	if cfg.Bot.Mode == "webhook" {
		webhook = botAdapter.WebhookHandler()
	}
	server := httpapi.NewServer(cfg.Bot.Port, botAdapter.WebhookPath(), webhook, adminRouter)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Key purge worker (hourly) ----
	purge := sched.NewKeyPurgeWorker(time.Hour, keyUC, logger)
	go func() { _ = purge.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}

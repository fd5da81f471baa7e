// README: Entry point; loads config, wires services, serves the webhook or long-polls Telegram.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"transferair/internal/ai"
	"transferair/internal/app"
	"transferair/internal/bot"
	"transferair/internal/config"
	httptransport "transferair/internal/http"
	"transferair/internal/infra"
	"transferair/internal/modules/aiusage"
	"transferair/internal/modules/intent"
	"transferair/internal/modules/order"
	"transferair/internal/timeutil"
)

const sessionSweepEvery = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("transfer bot stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := timeutil.UseZone(cfg.TimeZone); err != nil {
		return err
	}

	var dbPool *pgxpool.Pool
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		dbPool = pool
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	}

	pricingSvc, err := app.NewPricing(ctx, cfg, dbPool, redisClient, logger)
	if err != nil {
		return err
	}

	api, err := infra.NewTelegram(cfg.Telegram.Token)
	if err != nil {
		return err
	}
	logger.Info("authorized on telegram", zap.String("bot", api.Self.UserName))

	var orderStore order.Repository
	if dbPool != nil {
		orderStore = order.NewStore(dbPool)
	}
	var notifier order.Notifier
	if cfg.Telegram.AdminChatID != 0 {
		notifier = bot.NewAdminNotifier(api, cfg.Telegram.AdminChatID, pricingSvc)
	} else {
		logger.Warn("ADMIN_CHAT_ID is not set, orders will not reach the dispatcher")
	}
	orderSvc := order.NewService(orderStore, notifier, logger)

	var classifier intent.Classifier
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			return err
		}
		defer provider.Close()
		classifier = provider
	}
	var quota bot.Quota
	if classifier != nil && dbPool != nil {
		quota = aiusage.NewService(aiusage.NewStore(dbPool, cfg.AI.MonthlyQuota))
	}

	sessions := order.NewSessions(cfg.SessionTTL)
	go sessions.RunSweeper(ctx, sessionSweepEvery)

	dispatcher := bot.New(bot.Deps{
		Sender:     api,
		Pricing:    pricingSvc,
		Orders:     orderSvc,
		Sessions:   sessions,
		Classifier: classifier,
		Quota:      quota,
		Contacts: bot.Contacts{
			DispatcherURL:   cfg.Contacts.DispatcherURL,
			DispatcherPhone: cfg.Contacts.DispatcherPhone,
			SiteURL:         cfg.Contacts.SiteURL,
		},
		Logger: logger,
	})

	gin.SetMode(gin.ReleaseMode)
	deps := httptransport.RouterDeps{
		Pricing: pricingSvc,
		Logger:  logger,
	}

	if cfg.WebhookEnabled() {
		deps.Updates = dispatcher
		deps.WebhookSecret = cfg.Telegram.WebhookSecret
		url := bot.WebhookURL(cfg.Telegram.BaseURL, cfg.Telegram.WebhookSecret)
		go func() {
			if err := bot.RegisterWebhook(ctx, api, url, bot.WebhookRetryInterval, logger); err != nil {
				logger.Warn("webhook registration abandoned", zap.Error(err))
			}
		}()
		defer func() {
			if err := bot.DeleteWebhook(api); err != nil {
				logger.Warn("failed to delete webhook", zap.Error(err))
			} else {
				logger.Info("webhook removed")
			}
		}()
	} else {
		logger.Warn("APP_BASE_URL is not set, falling back to long polling")
		if err := bot.DeleteWebhook(api); err != nil {
			logger.Warn("failed to delete webhook", zap.Error(err))
		}
		go dispatcher.Poll(ctx, api)
	}

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.NewRouter(deps), logger)
	return server.Run(ctx)
}

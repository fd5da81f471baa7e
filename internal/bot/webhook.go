// README: Webhook registration with retry, and long polling when no public URL is configured.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	WebhookRetryInterval = 30 * time.Second
	pollTimeoutSeconds   = 60
	maxConcurrentUpdates = 16
)

// WebhookURL joins the public base URL with the secret path segment.
func WebhookURL(baseURL, secret string) string {
	u := strings.TrimRight(baseURL, "/") + "/webhook/" + secret
	return strings.TrimRight(u, "/")
}

// RegisterWebhook publishes the bot commands and points Telegram at url. It
// retries every interval until it succeeds or ctx is done.
func RegisterWebhook(ctx context.Context, sender Sender, url string, interval time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for {
		err := registerOnce(sender, url)
		if err == nil {
			logger.Info("webhook set", zap.String("url", url))
			return nil
		}
		logger.Warn("webhook not set yet, retrying", zap.Error(err), zap.Duration("retry_in", interval))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func registerOnce(sender Sender, url string) error {
	cmds := tgbotapi.NewSetMyCommands(tgbotapi.BotCommand{Command: "start", Description: "Запуск"})
	if _, err := sender.Request(cmds); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	wh.DropPendingUpdates = true
	if _, err := sender.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes the webhook, keeping pending updates.
func DeleteWebhook(sender Sender) error {
	if _, err := sender.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// Poller is the long-polling part of *tgbotapi.BotAPI.
type Poller interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poll receives updates until ctx is done, handling up to maxConcurrentUpdates at once.
func (b *Bot) Poll(ctx context.Context, api Poller) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := api.GetUpdatesChan(cfg)

	var g errgroup.Group
	g.SetLimit(maxConcurrentUpdates)
	defer func() { _ = g.Wait() }()

	b.logger.Info("long polling started")
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			g.Go(func() error {
				b.HandleUpdate(ctx, u)
				return nil
			})
		}
	}
}

package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"transferair/internal/modules/order"
	"transferair/internal/modules/pricing"
)

var _ order.Notifier = (*AdminNotifier)(nil)

// AdminNotifier posts submitted orders to the dispatcher chat.
type AdminNotifier struct {
	sender  Sender
	chatID  int64
	pricing *pricing.Service
}

// NewAdminNotifier returns a notifier for chatID. A zero chatID disables it.
func NewAdminNotifier(sender Sender, chatID int64, pricingSvc *pricing.Service) *AdminNotifier {
	return &AdminNotifier{sender: sender, chatID: chatID, pricing: pricingSvc}
}

func (n *AdminNotifier) NotifyOrder(_ context.Context, o *order.Order) error {
	if n.chatID == 0 {
		return nil
	}
	var summary []pricing.ClassPrice
	if o.Quote != nil && n.pricing != nil {
		summary = n.pricing.Summary(*o.Quote)
	}
	msg := tgbotapi.NewMessage(n.chatID, adminText(o, summary))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("notify admin chat %d: %w", n.chatID, err)
	}
	return nil
}

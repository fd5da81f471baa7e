// README: Telegram dispatcher; routes updates to the calculator and order dialogues.
package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"transferair/internal/modules/intent"
	"transferair/internal/modules/order"
	"transferair/internal/modules/pricing"
	"transferair/internal/timeutil"
)

const classifyTimeout = 5 * time.Second

// Sender is the part of *tgbotapi.BotAPI the dispatcher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Quota limits how often a chat may use the classifier.
type Quota interface {
	UseToken(ctx context.Context, chatID int64) error
}

// Contacts are the dispatcher links shown in the menu.
type Contacts struct {
	DispatcherURL   string
	DispatcherPhone string
	SiteURL         string
}

func DefaultContacts() Contacts {
	return Contacts{
		DispatcherURL:   "https://t.me/zhelektown",
		DispatcherPhone: "+79340241414",
		SiteURL:         "https://transferkmw.ru",
	}
}

type Deps struct {
	Sender   Sender
	Pricing  *pricing.Service
	Orders   *order.Service
	Sessions *order.Sessions
	Contacts Contacts
	Logger   *zap.Logger

	// Classifier and Quota are optional. The classifier only sees free text
	// outside a dialogue; without a quota it is unmetered.
	Classifier intent.Classifier
	Quota      Quota
}

type Bot struct {
	sender     Sender
	pricing    *pricing.Service
	orders     *order.Service
	sessions   *order.Sessions
	classifier intent.Classifier
	quota      Quota
	contacts   Contacts
	logger     *zap.Logger
	now        func() time.Time
}

func New(deps Deps) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	contacts := deps.Contacts
	def := DefaultContacts()
	if contacts.DispatcherURL == "" {
		contacts.DispatcherURL = def.DispatcherURL
	}
	if contacts.DispatcherPhone == "" {
		contacts.DispatcherPhone = def.DispatcherPhone
	}
	if contacts.SiteURL == "" {
		contacts.SiteURL = def.SiteURL
	}
	return &Bot{
		sender:     deps.Sender,
		pricing:    deps.Pricing,
		orders:     deps.Orders,
		sessions:   deps.Sessions,
		classifier: deps.Classifier,
		quota:      deps.Quota,
		contacts:   contacts,
		logger:     logger,
		now:        timeutil.Now,
	}
}

// HandleUpdate processes one update. Updates of the same chat are serialized;
// different chats proceed in parallel.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling update", zap.Int("update_id", u.UpdateID), zap.Any("panic", r))
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.sender.Send(c); err != nil {
		b.logger.Warn("telegram send failed", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.send(msg)
}

func (b *Bot) answer(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		b.logger.Debug("answer callback failed", zap.Error(err))
	}
}

func customerOf(chatID int64, u *tgbotapi.User) order.Customer {
	c := order.Customer{ChatID: chatID}
	if u == nil {
		return c
	}
	c.UserID = u.ID
	c.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	c.Username = u.UserName
	return c
}

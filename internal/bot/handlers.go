package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"transferair/internal/modules/intent"
	"transferair/internal/modules/order"
	"transferair/internal/timeutil"
)

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	text := m.Text
	if m.Contact != nil {
		text = m.Contact.PhoneNumber
	}
	in := intent.Recognize(text)

	_ = b.sessions.With(chatID, func(s *order.Session) error {
		if in.Navigational() {
			b.navigate(ctx, s, in)
			return nil
		}
		b.handleText(ctx, s, in.Text)
		return nil
	})
}

func (b *Bot) navigate(ctx context.Context, s *order.Session, in intent.Intent) {
	chatID := s.ChatID
	switch in.Kind {
	case intent.KindStart:
		s.Reset()
		msg := tgbotapi.NewMessage(chatID, textStart)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = startKeyboard()
		b.send(msg)
	case intent.KindMenu:
		s.Reset()
		b.reply(chatID, textChooseAction, mainMenuKeyboard())
	case intent.KindBack:
		s.Reset()
		b.reply(chatID, textMainMenu, mainMenuKeyboard())
	case intent.KindCalculator:
		b.startCalculator(s)
	case intent.KindOrder:
		b.startOrder(s)
	case intent.KindDispatcher:
		b.reply(chatID, textDispatcher, dispatcherKeyboard(b.contacts))
	case intent.KindInfo:
		b.reply(chatID, infoText(b.contacts), nil)
	case intent.KindHelp:
		b.reply(chatID, textHelp, nil)
	}
}

func (b *Bot) startCalculator(s *order.Session) {
	s.Reset()
	_ = s.Advance(order.StepCalcOrigin)
	b.reply(s.ChatID, textCalcOrigin, quickPlacesKeyboard(b.pricing.Table().QuickPlaces()))
}

func (b *Bot) startOrder(s *order.Session) {
	s.Reset()
	_ = s.Advance(order.StepOrigin)
	b.reply(s.ChatID, textOrderOrigin, quickPlacesKeyboard(b.pricing.Table().QuickPlaces()))
}

func (b *Bot) handleText(ctx context.Context, s *order.Session, text string) {
	table := b.pricing.Table()
	switch s.Step {
	case order.StepIdle:
		b.handleFreeText(ctx, s, text)

	case order.StepCalcOrigin:
		if text == "" {
			return
		}
		s.Draft.Origin = table.Canonical(text)
		_ = s.Advance(order.StepCalcDestination)
		b.reply(s.ChatID, textCalcDestination, quickPlacesKeyboard(table.QuickPlaces()))

	case order.StepCalcDestination:
		if text == "" {
			return
		}
		s.Draft.Destination = table.Canonical(text)
		b.calculate(ctx, s)

	case order.StepOrigin:
		if text == "" {
			return
		}
		s.Draft.Origin = table.Canonical(text)
		_ = s.Advance(order.StepDestination)
		b.reply(s.ChatID, textOrderDest, quickPlacesKeyboard(table.QuickPlaces()))

	case order.StepDestination:
		if text == "" {
			return
		}
		s.Draft.Destination = table.Canonical(text)
		_ = s.Advance(order.StepDate)
		now := b.now().In(timeutil.Location())
		b.reply(s.ChatID, textPickDate, calendarKeyboard(now, now))

	case order.StepPhone:
		if !order.ValidPhone(text) {
			b.reply(s.ChatID, textBadPhone, phoneKeyboard())
			return
		}
		s.Draft.Phone = strings.TrimSpace(text)
		_ = s.Advance(order.StepAskComment)
		b.reply(s.ChatID, "📞 Телефон: <b>"+s.Draft.Phone+"</b>", tgbotapi.NewRemoveKeyboard(false))
		b.reply(s.ChatID, textAskComment, commentKeyboard())

	case order.StepComment:
		s.Draft.Comment = order.NormalizeComment(text)
		_ = s.Advance(order.StepConfirm)
		b.proceedToConfirm(ctx, s)

	default:
		b.reply(s.ChatID, textUseButtons, nil)
	}
}

// calculate prices the calculator route. On failure the user stays on the
// destination step and may type it again.
func (b *Bot) calculate(ctx context.Context, s *order.Session) {
	q, err := b.pricing.Resolve(ctx, s.Draft.Origin, s.Draft.Destination)
	if err != nil {
		b.logger.Info("calculator quote failed",
			zap.String("origin", s.Draft.Origin),
			zap.String("destination", s.Draft.Destination),
			zap.Error(err))
		b.reply(s.ChatID, textCalcFailed, nil)
		return
	}
	b.reply(s.ChatID, calculatorText(s.Draft.Origin, s.Draft.Destination, b.pricing.Summary(q)), mainMenuKeyboard())
	_ = s.Advance(order.StepIdle)
	s.Draft = order.Draft{}
}

// handleFreeText asks the classifier what a message outside any dialogue means.
// Without a classifier, or when it cannot tell, the main menu is shown.
func (b *Bot) handleFreeText(ctx context.Context, s *order.Session, text string) {
	if b.classifier == nil || text == "" {
		b.reply(s.ChatID, textChooseAction, mainMenuKeyboard())
		return
	}
	if b.quota != nil {
		if err := b.quota.UseToken(ctx, s.ChatID); err != nil {
			b.logger.Info("classifier quota refused", zap.Int64("chat_id", s.ChatID), zap.Error(err))
			b.reply(s.ChatID, textChooseAction, mainMenuKeyboard())
			return
		}
	}
	cctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()
	g, err := b.classifier.Classify(cctx, text)
	if err != nil {
		b.logger.Warn("free text classification failed", zap.Error(err))
		b.reply(s.ChatID, textChooseAction, mainMenuKeyboard())
		return
	}

	switch g.Kind {
	case intent.KindCalculator:
		if g.Origin == "" || g.Destination == "" {
			b.startCalculator(s)
			return
		}
		table := b.pricing.Table()
		_ = s.Advance(order.StepCalcOrigin)
		s.Draft.Origin = table.Canonical(g.Origin)
		_ = s.Advance(order.StepCalcDestination)
		s.Draft.Destination = table.Canonical(g.Destination)
		b.calculate(ctx, s)
	case intent.KindOrder:
		b.startOrder(s)
	case intent.KindDispatcher, intent.KindInfo:
		b.navigate(ctx, s, intent.Intent{Kind: g.Kind})
	default:
		b.reply(s.ChatID, textChooseAction, mainMenuKeyboard())
	}
}

func (b *Bot) proceedToConfirm(ctx context.Context, s *order.Session) {
	priceBlock := textNoQuote
	q, err := b.pricing.Resolve(ctx, s.Draft.Origin, s.Draft.Destination)
	if err != nil {
		b.logger.Info("order quote failed",
			zap.String("origin", s.Draft.Origin),
			zap.String("destination", s.Draft.Destination),
			zap.Error(err))
		s.Draft.Quote = nil
	} else {
		s.Draft.Quote = &q
		priceBlock = pricesText(b.pricing.Summary(q))
	}
	b.reply(s.ChatID, confirmText(s.Draft, priceBlock), confirmKeyboard())
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		b.answer(cq, "")
		return
	}
	chatID := cq.Message.Chat.ID
	cb := intent.ParseCallback(cq.Data)

	switch cb.Kind {
	case intent.CallbackNoop, intent.CallbackUnknown:
		b.answer(cq, "")
		return
	case intent.CallbackDispatcherPhone:
		b.reply(chatID, dispatcherPhoneText(b.contacts), nil)
		b.answer(cq, "Номер отправлен")
		return
	case intent.CallbackMonth:
		now := b.now().In(timeutil.Location())
		target := time.Date(cb.Year, cb.Month, 1, 0, 0, 0, 0, timeutil.Location())
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, cq.Message.MessageID, calendarKeyboard(target, now))
		if _, err := b.sender.Request(edit); err != nil {
			b.logger.Debug("calendar edit failed", zap.Error(err))
		}
		b.answer(cq, "")
		return
	}

	_ = b.sessions.With(chatID, func(s *order.Session) error {
		notice := b.applyCallback(ctx, s, cq, cb)
		b.answer(cq, notice)
		return nil
	})
}

const noticeStale = "Эта кнопка уже неактуальна"

// applyCallback advances the order dialogue and returns the callback notice.
func (b *Bot) applyCallback(ctx context.Context, s *order.Session, cq *tgbotapi.CallbackQuery, cb intent.Callback) string {
	chatID := s.ChatID
	switch cb.Kind {
	case intent.CallbackDay:
		if s.Step != order.StepDate {
			return noticeStale
		}
		if _, err := order.CheckDate(cb.Date, b.now()); err != nil {
			if errors.Is(err, order.ErrPastDate) {
				return "Эта дата уже прошла"
			}
			return noticeStale
		}
		s.Draft.Date = cb.Date
		_ = s.Advance(order.StepHour)
		b.reply(chatID, textPickHour, hourKeyboard())

	case intent.CallbackHour:
		if s.Step != order.StepHour || !order.ValidHour(cb.Hour) {
			return noticeStale
		}
		s.Draft.Hour = cb.Hour
		_ = s.Advance(order.StepMinute)
		b.reply(chatID, textPickMinute, minuteKeyboard(cb.Hour))

	case intent.CallbackMinute:
		if s.Step != order.StepMinute || !order.ValidHour(cb.Hour) || !order.ValidMinute(cb.Minute) {
			return noticeStale
		}
		s.Draft.Hour = cb.Hour
		s.Draft.Time = cb.Hour + ":" + cb.Minute
		_ = s.Advance(order.StepPassengers)
		b.reply(chatID, textPickPassengers, passengersKeyboard())

	case intent.CallbackPassengers:
		if s.Step != order.StepPassengers || !order.ValidPassengers(cb.Passengers) {
			return noticeStale
		}
		s.Draft.Passengers = cb.Passengers
		_ = s.Advance(order.StepPhone)
		b.reply(chatID, textAskPhone, phoneKeyboard())

	case intent.CallbackComment:
		if s.Step != order.StepAskComment {
			return noticeStale
		}
		if cb.Yes {
			_ = s.Advance(order.StepComment)
			b.reply(chatID, textEnterComment, nil)
			return ""
		}
		s.Draft.Comment = ""
		_ = s.Advance(order.StepConfirm)
		b.proceedToConfirm(ctx, s)

	case intent.CallbackCancel:
		if s.Step != order.StepConfirm {
			return noticeStale
		}
		s.Reset()
		b.editText(cq, textCancelled)
		b.reply(chatID, textMainMenu, mainMenuKeyboard())

	case intent.CallbackEdit:
		if s.Step != order.StepConfirm {
			return noticeStale
		}
		_ = s.Advance(order.StepOrigin)
		s.Draft = order.Draft{}
		b.editText(cq, textEditOrder)

	case intent.CallbackConfirm:
		if s.Step != order.StepConfirm {
			return noticeStale
		}
		o := order.FromDraft(s.Draft, customerOf(chatID, cq.From))
		if err := b.orders.Submit(ctx, o); err != nil {
			b.logger.Error("order submission failed", zap.Int64("chat_id", chatID), zap.Error(err))
			b.reply(chatID, textSubmitFailed, nil)
			return "Ошибка"
		}
		b.logger.Info("order submitted", zap.String("order_id", string(o.ID)), zap.Int64("chat_id", chatID))
		_ = s.Advance(order.StepIdle)
		s.Draft = order.Draft{}
		b.editText(cq, textAccepted)
		b.reply(chatID, textMainMenu, mainMenuKeyboard())
		return "Заявка отправлена"
	}
	return ""
}

func (b *Bot) editText(cq *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, text)
	if _, err := b.sender.Request(edit); err != nil {
		b.logger.Debug("message edit failed", zap.Error(err))
	}
}

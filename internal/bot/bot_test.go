package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"transferair/internal/modules/intent"
	"transferair/internal/modules/order"
	"transferair/internal/modules/pricing"
	"transferair/internal/timeutil"
)

type fakeSender struct {
	mu           sync.Mutex
	sent         []tgbotapi.Chattable
	requests     []tgbotapi.Chattable
	failRequests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRequests > 0 {
		f.failRequests--
		return nil, errors.New("network down")
	}
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	msgs := f.messages()
	if len(msgs) == 0 {
		t.Fatal("no messages sent")
	}
	return msgs[len(msgs)-1]
}

func (f *fakeSender) callbackAnswers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

func (f *fakeSender) edits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.requests {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, e.Text)
		}
	}
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []*order.Order
}

func (n *recordingNotifier) NotifyOrder(_ context.Context, o *order.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o)
	return nil
}

const testChat int64 = 42

var testNow = time.Date(2026, 10, 15, 10, 0, 0, 0, timeutil.Location())

func newTestBot(t *testing.T) (*Bot, *fakeSender, *recordingNotifier) {
	t.Helper()
	table, err := pricing.DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable: %v", err)
	}
	sender := &fakeSender{}
	notifier := &recordingNotifier{}
	b := New(Deps{
		Sender:   sender,
		Pricing:  pricing.NewService(table, nil, nil),
		Orders:   order.NewService(nil, notifier, nil),
		Sessions: order.NewSessions(time.Hour),
	})
	b.now = func() time.Time { return testNow }
	return b, sender, notifier
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: testChat},
		From:      &tgbotapi.User{ID: testChat, FirstName: "Иван", LastName: "Петров", UserName: "ivan"},
		Text:      text,
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: testChat, FirstName: "Иван", LastName: "Петров", UserName: "ivan"},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	}}
}

func TestStartCommand(t *testing.T) {
	b, sender, _ := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/start"))

	msg := sender.lastMessage(t)
	if msg.ParseMode != tgbotapi.ModeMarkdown {
		t.Errorf("parse mode = %q", msg.ParseMode)
	}
	if !strings.Contains(msg.Text, "TransferAir Кавказские Минеральные Воды") {
		t.Errorf("unexpected start text: %q", msg.Text)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok || kb.Keyboard[0][0].Text != intent.ButtonStart {
		t.Errorf("expected start keyboard, got %#v", msg.ReplyMarkup)
	}
}

func TestCalculatorFixedFare(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()
	b.HandleUpdate(ctx, textUpdate(intent.ButtonCalculator))
	b.HandleUpdate(ctx, textUpdate("мрв"))
	b.HandleUpdate(ctx, textUpdate("  кисловодск "))

	msg := sender.lastMessage(t)
	for _, want := range []string{"Из: <b>Аэропорт MRV</b>", "В: <b>Кисловодск</b>", "~1800 ₽", "~2500 ₽", "~3000 ₽"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("result %q missing %q", msg.Text, want)
		}
	}
	if s := b.sessions.Snapshot(testChat); s.Step != order.StepIdle || s.Draft.Origin != "" {
		t.Errorf("session after calculation = %+v", s)
	}
}

func TestCalculatorFailureKeepsStep(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()
	b.HandleUpdate(ctx, textUpdate(intent.ButtonCalculator))
	b.HandleUpdate(ctx, textUpdate("Кисловодск"))
	b.HandleUpdate(ctx, textUpdate("Нигдегорск"))

	if msg := sender.lastMessage(t); msg.Text != textCalcFailed {
		t.Errorf("text = %q", msg.Text)
	}
	if s := b.sessions.Snapshot(testChat); s.Step != order.StepCalcDestination {
		t.Errorf("step = %s, want %s", s.Step, order.StepCalcDestination)
	}
}

func TestBackButtonReturnsToMenu(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()
	b.HandleUpdate(ctx, textUpdate(intent.ButtonOrder))
	b.HandleUpdate(ctx, textUpdate(intent.ButtonBack))

	if msg := sender.lastMessage(t); msg.Text != textMainMenu {
		t.Errorf("text = %q", msg.Text)
	}
	if s := b.sessions.Snapshot(testChat); s.Step != order.StepIdle {
		t.Errorf("step = %s", s.Step)
	}
}

func walkOrderToConfirm(t *testing.T, b *Bot) {
	t.Helper()
	ctx := context.Background()
	b.HandleUpdate(ctx, textUpdate(intent.ButtonOrder))
	b.HandleUpdate(ctx, textUpdate("мин воды"))
	b.HandleUpdate(ctx, textUpdate("Кисловодск"))
	b.HandleUpdate(ctx, callbackUpdate("cal:2026-10-16"))
	b.HandleUpdate(ctx, callbackUpdate("th:09"))
	b.HandleUpdate(ctx, callbackUpdate("tm:09:30"))
	b.HandleUpdate(ctx, callbackUpdate("ppl:2"))
	b.HandleUpdate(ctx, textUpdate("+7 934 024-14-14"))
	b.HandleUpdate(ctx, callbackUpdate("cmt:yes"))
	b.HandleUpdate(ctx, textUpdate("Детское кресло"))

	if s := b.sessions.Snapshot(testChat); s.Step != order.StepConfirm {
		t.Fatalf("step = %s, want confirm", s.Step)
	}
}

func TestOrderFlowSubmits(t *testing.T) {
	b, sender, notifier := newTestBot(t)
	walkOrderToConfirm(t, b)

	summary := sender.lastMessage(t)
	for _, want := range []string{
		"~1800 ₽",
		"Откуда: <b>Минеральные Воды</b>",
		"Куда: <b>Кисловодск</b>",
		"Дата: <b>2026-10-16</b>",
		"Время: <b>09:30</b>",
		"Пассажиров: <b>2</b>",
		"Комментарий: Детское кресло",
		"Подтвердить?",
	} {
		if !strings.Contains(summary.Text, want) {
			t.Errorf("summary missing %q:\n%s", want, summary.Text)
		}
	}

	b.HandleUpdate(context.Background(), callbackUpdate(intent.DataConfirm))

	if len(notifier.orders) != 1 {
		t.Fatalf("notified %d orders, want 1", len(notifier.orders))
	}
	o := notifier.orders[0]
	if o.Origin != "Минеральные Воды" || o.Destination != "Кисловодск" || o.Time != "09:30" || o.Phone != "+7 934 024-14-14" {
		t.Errorf("unexpected order %+v", o)
	}
	if o.Quote == nil || o.Quote.Prices.Economy != 1800 {
		t.Errorf("quote = %+v", o.Quote)
	}
	if o.Customer.Name != "Иван Петров" || o.Customer.UserID != testChat {
		t.Errorf("customer = %+v", o.Customer)
	}

	answers := sender.callbackAnswers()
	if answers[len(answers)-1] != "Заявка отправлена" {
		t.Errorf("last callback answer = %q", answers[len(answers)-1])
	}
	edits := sender.edits()
	if len(edits) == 0 || edits[len(edits)-1] != textAccepted {
		t.Errorf("edits = %v", edits)
	}
	if s := b.sessions.Snapshot(testChat); s.Step != order.StepIdle {
		t.Errorf("step = %s", s.Step)
	}
}

func TestOrderCancel(t *testing.T) {
	b, sender, notifier := newTestBot(t)
	walkOrderToConfirm(t, b)
	b.HandleUpdate(context.Background(), callbackUpdate(intent.DataCancel))

	if len(notifier.orders) != 0 {
		t.Errorf("cancelled order was submitted")
	}
	if edits := sender.edits(); edits[len(edits)-1] != textCancelled {
		t.Errorf("edits = %v", edits)
	}
	if s := b.sessions.Snapshot(testChat); s.Step != order.StepIdle || s.Draft.Origin != "" {
		t.Errorf("session = %+v", s)
	}
}

func TestOrderEditRestartsAtOrigin(t *testing.T) {
	b, _, _ := newTestBot(t)
	walkOrderToConfirm(t, b)
	b.HandleUpdate(context.Background(), callbackUpdate(intent.DataEdit))

	s := b.sessions.Snapshot(testChat)
	if s.Step != order.StepOrigin || s.Draft.Destination != "" {
		t.Errorf("session = %+v", s)
	}
}

func TestPastDateRejected(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()
	b.HandleUpdate(ctx, textUpdate(intent.ButtonOrder))
	b.HandleUpdate(ctx, textUpdate("Пятигорск"))
	b.HandleUpdate(ctx, textUpdate("Кисловодск"))
	b.HandleUpdate(ctx, callbackUpdate("cal:2026-10-14"))

	answers := sender.callbackAnswers()
	if answers[len(answers)-1] != "Эта дата уже прошла" {
		t.Errorf("answer = %q", answers[len(answers)-1])
	}
	if s := b.sessions.Snapshot(testChat); s.Step != order.StepDate {
		t.Errorf("step = %s", s.Step)
	}
}

func TestStaleCallbackIgnored(t *testing.T) {
	b, sender, notifier := newTestBot(t)
	b.HandleUpdate(context.Background(), callbackUpdate(intent.DataConfirm))

	if len(notifier.orders) != 0 {
		t.Error("stale confirm submitted an order")
	}
	if answers := sender.callbackAnswers(); len(answers) != 1 || answers[0] != noticeStale {
		t.Errorf("answers = %v", answers)
	}
}

func TestInvalidPhoneKeepsStep(t *testing.T) {
	b, sender, _ := newTestBot(t)
	ctx := context.Background()
	b.HandleUpdate(ctx, textUpdate(intent.ButtonOrder))
	b.HandleUpdate(ctx, textUpdate("Пятигорск"))
	b.HandleUpdate(ctx, textUpdate("Кисловодск"))
	b.HandleUpdate(ctx, callbackUpdate("cal:2026-10-16"))
	b.HandleUpdate(ctx, callbackUpdate("th:18"))
	b.HandleUpdate(ctx, callbackUpdate("tm:18:45"))
	b.HandleUpdate(ctx, callbackUpdate("ppl:7+"))
	b.HandleUpdate(ctx, textUpdate("позвоните мне"))

	if msg := sender.lastMessage(t); msg.Text != textBadPhone {
		t.Errorf("text = %q", msg.Text)
	}
	if s := b.sessions.Snapshot(testChat); s.Step != order.StepPhone || s.Draft.Passengers != "7+" {
		t.Errorf("session = %+v", s)
	}
}

func TestSharedContactAcceptedAsPhone(t *testing.T) {
	b, _, _ := newTestBot(t)
	ctx := context.Background()
	b.HandleUpdate(ctx, textUpdate(intent.ButtonOrder))
	b.HandleUpdate(ctx, textUpdate("Пятигорск"))
	b.HandleUpdate(ctx, textUpdate("Кисловодск"))
	b.HandleUpdate(ctx, callbackUpdate("cal:2026-10-16"))
	b.HandleUpdate(ctx, callbackUpdate("th:18"))
	b.HandleUpdate(ctx, callbackUpdate("tm:18:45"))
	b.HandleUpdate(ctx, callbackUpdate("ppl:1"))

	u := textUpdate("")
	u.Message.Contact = &tgbotapi.Contact{PhoneNumber: "79340241414", FirstName: "Иван"}
	b.HandleUpdate(ctx, u)

	if s := b.sessions.Snapshot(testChat); s.Step != order.StepAskComment || s.Draft.Phone != "79340241414" {
		t.Errorf("session = %+v", s)
	}
}

func TestDispatcherKeyboard(t *testing.T) {
	b, sender, _ := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate(intent.ButtonDispatcher))

	kb, ok := sender.lastMessage(t).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatal("expected inline keyboard")
	}
	if url := kb.InlineKeyboard[0][0].URL; url == nil || *url != "https://t.me/zhelektown" {
		t.Errorf("dispatcher url = %v", url)
	}
	if data := kb.InlineKeyboard[1][0].CallbackData; data == nil || *data != intent.DataDispatcherPhone {
		t.Errorf("phone button data = %v", data)
	}

	b.HandleUpdate(context.Background(), callbackUpdate(intent.DataDispatcherPhone))
	if msg := sender.lastMessage(t); !strings.Contains(msg.Text, "+7 934 024-14-14") {
		t.Errorf("phone text = %q", msg.Text)
	}
}

func TestCalendarKeyboard(t *testing.T) {
	kb := calendarKeyboard(testNow, testNow)
	rows := kb.InlineKeyboard

	// header, weekdays, five weeks, navigation
	if len(rows) != 8 {
		t.Fatalf("rows = %d, want 8", len(rows))
	}
	if rows[0][0].Text != "📅 Октябрь 2026" {
		t.Errorf("header = %q", rows[0][0].Text)
	}
	if rows[1][0].Text != "Пн" || rows[1][6].Text != "Вс" {
		t.Errorf("weekday row = %q..%q", rows[1][0].Text, rows[1][6].Text)
	}
	// 1 October 2026 is a Thursday.
	if rows[2][2].Text != " " || rows[2][3].Text != "·" {
		t.Errorf("first week = %q %q", rows[2][2].Text, rows[2][3].Text)
	}
	today := rows[4][3]
	if today.Text != "15" || today.CallbackData == nil || *today.CallbackData != "cal:2026-10-15" {
		t.Errorf("today button = %q", today.Text)
	}
	if rows[4][2].Text != "·" {
		t.Errorf("yesterday should be disabled, got %q", rows[4][2].Text)
	}
	for _, row := range rows[2:7] {
		if len(row) != 7 {
			t.Errorf("week row has %d buttons", len(row))
		}
	}
	nav := rows[7]
	if *nav[0].CallbackData != "calnav:2026-09" || *nav[1].CallbackData != "cal:2026-10-15" || *nav[2].CallbackData != "calnav:2026-11" {
		t.Errorf("nav = %q %q %q", *nav[0].CallbackData, *nav[1].CallbackData, *nav[2].CallbackData)
	}
}

func TestMonthNavigationEditsMarkup(t *testing.T) {
	b, sender, _ := newTestBot(t)
	b.HandleUpdate(context.Background(), callbackUpdate("calnav:2026-11"))

	var found bool
	for _, r := range sender.requests {
		if e, ok := r.(tgbotapi.EditMessageReplyMarkupConfig); ok {
			found = true
			if got := e.ReplyMarkup.InlineKeyboard[0][0].Text; got != "📅 Ноябрь 2026" {
				t.Errorf("header = %q", got)
			}
		}
	}
	if !found {
		t.Error("calendar was not edited")
	}
}

func TestHourKeyboard(t *testing.T) {
	kb := hourKeyboard()
	if len(kb.InlineKeyboard) != 4 {
		t.Fatalf("rows = %d", len(kb.InlineKeyboard))
	}
	last := kb.InlineKeyboard[3][5]
	if last.Text != "23" || *last.CallbackData != "th:23" {
		t.Errorf("last hour = %q", last.Text)
	}
}

func TestQuickPlacesKeyboard(t *testing.T) {
	kb := quickPlacesKeyboard([]string{"A", "B", "C"})
	if len(kb.Keyboard) != 3 || len(kb.Keyboard[1]) != 1 || kb.Keyboard[2][0].Text != intent.ButtonBack {
		t.Errorf("keyboard = %+v", kb.Keyboard)
	}
}

func TestFormatPhone(t *testing.T) {
	cases := map[string]string{
		"+79340241414": "+7 934 024-14-14",
		"89340241414":  "89340241414",
		"+7934024141a": "+7934024141a",
	}
	for in, want := range cases {
		if got := formatPhone(in); got != want {
			t.Errorf("formatPhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAdminNotifier(t *testing.T) {
	table, err := pricing.DefaultTable()
	if err != nil {
		t.Fatal(err)
	}
	svc := pricing.NewService(table, nil, nil)
	q := pricing.Quote{Prices: pricing.Prices{Economy: 1800, Sedan: 2500, Minivan: 3000}, Source: pricing.SourceFixed}
	o := &order.Order{
		Customer:    order.Customer{ChatID: 1, UserID: 7, Name: "<b>Eve</b>"},
		Origin:      "Аэропорт MRV",
		Destination: "Кисловодск",
		Date:        "2026-10-16",
		Time:        "09:30",
		Passengers:  "2",
		Phone:       "+79340241414",
		Quote:       &q,
	}

	disabled := &fakeSender{}
	if err := NewAdminNotifier(disabled, 0, svc).NotifyOrder(context.Background(), o); err != nil || len(disabled.sent) != 0 {
		t.Errorf("zero chat id should be a no-op, err=%v sent=%d", err, len(disabled.sent))
	}

	sender := &fakeSender{}
	if err := NewAdminNotifier(sender, -100500, svc).NotifyOrder(context.Background(), o); err != nil {
		t.Fatalf("NotifyOrder: %v", err)
	}
	msg := sender.lastMessage(t)
	if msg.ChatID != -100500 {
		t.Errorf("chat id = %d", msg.ChatID)
	}
	for _, want := range []string{"🆕 <b>Заявка на заказ</b>", "<b>Аэропорт MRV</b> → <b>Кисловодск</b>", "Комментарий: —", "id=7", "&lt;b&gt;Eve&lt;/b&gt;", "~1800 ₽"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("admin text missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestWebhookURL(t *testing.T) {
	cases := []struct{ base, secret, want string }{
		{"https://bot.example.com", "s3cr3t", "https://bot.example.com/webhook/s3cr3t"},
		{"https://bot.example.com/", "s3cr3t", "https://bot.example.com/webhook/s3cr3t"},
		{"https://bot.example.com", "", "https://bot.example.com/webhook"},
	}
	for _, c := range cases {
		if got := WebhookURL(c.base, c.secret); got != c.want {
			t.Errorf("WebhookURL(%q, %q) = %q, want %q", c.base, c.secret, got, c.want)
		}
	}
}

func TestRegisterWebhookRetries(t *testing.T) {
	sender := &fakeSender{failRequests: 2}
	err := RegisterWebhook(context.Background(), sender, "https://bot.example.com/webhook/x", time.Millisecond, nil)
	if err != nil {
		t.Fatalf("RegisterWebhook: %v", err)
	}
	var sawWebhook bool
	for _, r := range sender.requests {
		if wh, ok := r.(tgbotapi.WebhookConfig); ok {
			sawWebhook = true
			if !wh.DropPendingUpdates {
				t.Error("pending updates should be dropped")
			}
		}
	}
	if !sawWebhook {
		t.Error("webhook was never set")
	}
}

func TestRegisterWebhookStopsOnCancel(t *testing.T) {
	sender := &fakeSender{failRequests: 1 << 30}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := RegisterWebhook(ctx, sender, "https://bot.example.com/webhook/x", time.Millisecond, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

type stubClassifier struct {
	guess intent.Guess
}

func (s stubClassifier) Classify(context.Context, string) (intent.Guess, error) {
	return s.guess, nil
}

func TestFreeTextClassifiedAsQuote(t *testing.T) {
	b, sender, _ := newTestBot(t)
	b.classifier = stubClassifier{guess: intent.Guess{Kind: intent.KindCalculator, Origin: "минводы", Destination: "Домбай"}}
	b.HandleUpdate(context.Background(), textUpdate("сколько стоит из минвод в домбай?"))

	msg := sender.lastMessage(t)
	if !strings.Contains(msg.Text, "Из: <b>Минеральные Воды</b>") || !strings.Contains(msg.Text, "В: <b>Домбай</b>") {
		t.Errorf("text = %q", msg.Text)
	}
}

func TestFreeTextWithoutClassifierShowsMenu(t *testing.T) {
	b, sender, _ := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("привет"))
	if msg := sender.lastMessage(t); msg.Text != textChooseAction {
		t.Errorf("text = %q", msg.Text)
	}
}

type refusingQuota struct{ calls int }

func (q *refusingQuota) UseToken(context.Context, int64) error {
	q.calls++
	return errors.New("insufficient tokens")
}

type panickingClassifier struct{}

func (panickingClassifier) Classify(context.Context, string) (intent.Guess, error) {
	panic("classifier must not be called")
}

func TestQuotaRefusalSkipsClassifier(t *testing.T) {
	b, sender, _ := newTestBot(t)
	quota := &refusingQuota{}
	b.classifier = panickingClassifier{}
	b.quota = quota
	b.HandleUpdate(context.Background(), textUpdate("такси до Домбая"))

	if quota.calls != 1 {
		t.Errorf("quota calls = %d", quota.calls)
	}
	if msg := sender.lastMessage(t); msg.Text != textChooseAction {
		t.Errorf("text = %q", msg.Text)
	}
}

// README: Message texts shown to users and to the dispatcher chat.
package bot

import (
	"fmt"
	"html"
	"strings"

	"transferair/internal/modules/order"
	"transferair/internal/modules/pricing"
)

const (
	textStart = " \n" +
		"*Здравствуйте!* \n" +
		"Это бот междугороднего такси \n" +
		"*TransferAir Кавказские Минеральные Воды*.\n" +
		" \n" +
		"Нажмите *Старт*, чтобы продолжить."

	textChooseAction = "Выберите действие:"
	textMainMenu     = "Вы в главном меню:"

	textCalcOrigin      = "Введите <b>город отправления</b> или выберите из списка:"
	textCalcDestination = "Введите <b>город прибытия</b> или выберите из списка:"
	textOrderOrigin     = "Введите <b>город отправления</b> или выберите:"
	textOrderDest       = "Введите <b>город прибытия</b> или выберите:"
	textPickDate        = "Выберите <b>дату подачи</b>:"
	textPickHour        = "Выберите <b>время подачи</b> — сначала <b>час</b>:"
	textPickMinute      = "Теперь выберите <b>минуты</b>:"
	textPickPassengers  = "Укажите <b>количество человек</b>:"
	textAskPhone        = "Укажите <b>номер телефона</b> для связи или нажмите кнопку ниже:"
	textBadPhone        = "Не похоже на номер телефона. Пример: <code>+7 900 123-45-67</code>"
	textAskComment      = "Хотите оставить комментарий к заказу?"
	textEnterComment    = "Введите комментарий:"
	textUseButtons      = "Пожалуйста, воспользуйтесь кнопками выше."

	textCalcFailed = "❌ Не удалось определить города. Попробуйте ещё раз.\n" +
		"Пример: <code>Кисловодск</code>, <code>Аэропорт MRV</code>."
	textNoQuote = "Предварительную стоимость сейчас посчитать не удалось."

	textCancelled    = "❌ Заказ отменён."
	textEditOrder    = "Изменим заказ. Введите снова город отправления:"
	textAccepted     = "✅ Спасибо, Ваша заявка принята! В ближайшее время с Вами свяжется диспетчер."
	textSubmitFailed = "⚠️ Не удалось отправить заявку. Попробуйте ещё раз или свяжитесь с диспетчером."

	textDispatcher = "☎️ <b>Связаться с диспетчером</b>\n\n" +
		"Нажмите кнопку ниже, чтобы написать диспетчеру в Telegram\n" +
		"или позвонить по телефону."

	textHelp = "/start — начать заново\n" +
		"/calc — калькулятор стоимости\n" +
		"/order — сделать заказ\n" +
		"/dispatcher — связаться с диспетчером\n" +
		"/info — информация"
)

func infoText(c Contacts) string {
	return "<b>TransferAir</b> — междугороднее такси (трансфер) из Минеральных Вод.\n\n" +
		"Можете заказать трансфер через бота, " +
		fmt.Sprintf("позвонить нам %s, ", phoneLink(c.DispatcherPhone)) +
		fmt.Sprintf("или посетить наш сайт: <a href=\"%s\">%s</a>",
			html.EscapeString(c.SiteURL), html.EscapeString(siteLabel(c.SiteURL)))
}

func dispatcherPhoneText(c Contacts) string {
	return "📱 Телефон диспетчера:\n" + phoneLink(c.DispatcherPhone) + "\n\nНажмите, чтобы позвонить."
}

func phoneLink(phone string) string {
	return fmt.Sprintf("<a href=\"tel:%s\">%s</a>", html.EscapeString(phone), html.EscapeString(formatPhone(phone)))
}

// formatPhone renders +7XXXXXXXXXX as "+7 XXX XXX-XX-XX"; anything else is returned unchanged.
func formatPhone(phone string) string {
	if len(phone) != 12 || !strings.HasPrefix(phone, "+7") {
		return phone
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return phone
		}
	}
	return fmt.Sprintf("+7 %s %s-%s-%s", phone[2:5], phone[5:8], phone[8:10], phone[10:12])
}

func siteLabel(site string) string {
	s := strings.TrimPrefix(site, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimSuffix(s, "/")
}

func pricesText(summary []pricing.ClassPrice) string {
	var b strings.Builder
	b.WriteString("Стоимость предварительная, окончательная цена оговаривается диспетчером!\n\n")
	b.WriteString("💰 Стоимость:")
	for _, p := range summary {
		fmt.Fprintf(&b, "\n• %s — ~%d ₽", html.EscapeString(p.Title), p.Amount)
	}
	return b.String()
}

func calculatorText(origin, destination string, summary []pricing.ClassPrice) string {
	return fmt.Sprintf("🧮 <b>Калькулятор стоимости</b>\n\nИз: <b>%s</b>\nВ: <b>%s</b>\n\n%s",
		html.EscapeString(origin), html.EscapeString(destination), pricesText(summary))
}

func orEmDash(s string) string {
	if s == "" {
		return "—"
	}
	return html.EscapeString(s)
}

// confirmText is the order summary shown before the user confirms. priceBlock is
// either the rendered prices or the "could not price" notice.
func confirmText(d order.Draft, priceBlock string) string {
	var b strings.Builder
	b.WriteString(priceBlock)
	b.WriteString("\n\nПроверьте данные заказа:\n\n")
	fmt.Fprintf(&b, "Откуда: <b>%s</b>\n", html.EscapeString(d.Origin))
	fmt.Fprintf(&b, "Куда: <b>%s</b>\n", html.EscapeString(d.Destination))
	fmt.Fprintf(&b, "Дата: <b>%s</b>\n", html.EscapeString(d.Date))
	fmt.Fprintf(&b, "Время: <b>%s</b>\n", html.EscapeString(d.Time))
	fmt.Fprintf(&b, "Пассажиров: <b>%s</b>\n", orEmDash(d.Passengers))
	fmt.Fprintf(&b, "Телефон: <b>%s</b>\n", orEmDash(d.Phone))
	fmt.Fprintf(&b, "Комментарий: %s\n\n", orEmDash(d.Comment))
	b.WriteString("Подтвердить?")
	return b.String()
}

func adminText(o *order.Order, summary []pricing.ClassPrice) string {
	var b strings.Builder
	b.WriteString("🆕 <b>Заявка на заказ</b>\n\n")
	fmt.Fprintf(&b, "От: <b>%s</b> → <b>%s</b>\n", html.EscapeString(o.Origin), html.EscapeString(o.Destination))
	fmt.Fprintf(&b, "Дата: <b>%s</b>, Время: <b>%s</b>\n", html.EscapeString(o.Date), html.EscapeString(o.Time))
	fmt.Fprintf(&b, "Пассажиров: <b>%s</b>\n", orEmDash(o.Passengers))
	fmt.Fprintf(&b, "Телефон: <b>%s</b>\n", orEmDash(o.Phone))
	fmt.Fprintf(&b, "Комментарий: %s\n", orEmDash(o.Comment))
	if o.Quote != nil && len(summary) > 0 {
		parts := make([]string, 0, len(summary))
		for _, p := range summary {
			parts = append(parts, fmt.Sprintf("%s ~%d ₽", html.EscapeString(p.Title), p.Amount))
		}
		fmt.Fprintf(&b, "Оценка: %s\n", strings.Join(parts, ", "))
	}
	name := o.Customer.Name
	if o.Customer.Username != "" {
		name += " @" + o.Customer.Username
	}
	fmt.Fprintf(&b, "\n👤 %s (id=%d)", html.EscapeString(strings.TrimSpace(name)), o.Customer.UserID)
	return b.String()
}

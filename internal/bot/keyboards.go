// README: Reply and inline keyboards used by the dialogue.
package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"transferair/internal/modules/intent"
	"transferair/internal/modules/order"
)

func startKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(intent.ButtonStart)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(intent.ButtonCalculator)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(intent.ButtonOrder)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(intent.ButtonDispatcher)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(intent.ButtonInfo)),
	)
	kb.ResizeKeyboard = true
	return kb
}

// quickPlacesKeyboard lays places out two per row with a back button last.
func quickPlacesKeyboard(places []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, p := range places {
		row = append(row, tgbotapi.NewKeyboardButton(p))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(intent.ButtonBack)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func phoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(intent.ButtonSharePhone)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(intent.ButtonBack)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// dispatcherKeyboard links to the dispatcher's chat. Telegram rejects tel: URLs
// on inline buttons, so the call button asks the bot to send the number instead.
func dispatcherKeyboard(c Contacts) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("💬 Написать диспетчеру в Telegram", c.DispatcherURL)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📱 Позвонить диспетчеру", intent.DataDispatcherPhone)),
	)
}

func hourKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 4)
	for start := 0; start < 24; start += 6 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 6)
		for h := start; h < start+6; h++ {
			label := strconv.Itoa(h)
			if h < 10 {
				label = "0" + label
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, intent.HourData(h)))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func minuteKeyboard(hour string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(order.MinuteOptions))
	for _, m := range order.MinuteOptions {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(hour+":"+m, intent.MinuteData(hour, m)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func passengersKeyboard() tgbotapi.InlineKeyboardMarkup {
	btn := func(label, value string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, intent.PassengersData(value))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("1", "1"), btn("2", "2"), btn("3", "3")),
		tgbotapi.NewInlineKeyboardRow(btn("4", "4"), btn("5", "5"), btn("6", "6")),
		tgbotapi.NewInlineKeyboardRow(btn("7 и более", "7+")),
	)
}

func commentKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Да", intent.CommentData(true)),
		tgbotapi.NewInlineKeyboardButtonData("Нет", intent.CommentData(false)),
	))
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", intent.DataConfirm),
		tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить", intent.DataEdit),
		tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", intent.DataCancel),
	))
}

package bot

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"transferair/internal/modules/intent"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var weekdayNames = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// calendarKeyboard renders the month containing target with Monday-first weeks.
// Days before today are shown as "·" and cannot be picked.
func calendarKeyboard(target, today time.Time) tgbotapi.InlineKeyboardMarkup {
	loc := today.Location()
	first := time.Date(target.Year(), target.Month(), 1, 0, 0, 0, 0, loc)
	todayDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	noop := func(label string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, intent.DataNoop)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		{noop(fmt.Sprintf("📅 %s %d", monthNames[first.Month()-1], first.Year()))},
	}
	header := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, d := range weekdayNames {
		header = append(header, noop(d))
	}
	rows = append(rows, header)

	offset := (int(first.Weekday()) + 6) % 7
	daysInMonth := first.AddDate(0, 1, -1).Day()
	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, noop(" "))
	}
	for day := 1; day <= daysInMonth; day++ {
		date := first.AddDate(0, 0, day-1)
		if date.Before(todayDay) {
			week = append(week, noop("·"))
		} else {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(day), intent.DayData(date)))
		}
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, noop(" "))
		}
		rows = append(rows, week)
	}

	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("«", intent.MonthData(prev.Year(), prev.Month())),
		tgbotapi.NewInlineKeyboardButtonData("Сегодня", intent.DayData(todayDay)),
		tgbotapi.NewInlineKeyboardButtonData("»", intent.MonthData(next.Year(), next.Month())),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

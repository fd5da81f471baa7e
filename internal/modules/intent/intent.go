// README: Maps raw chat text to tagged intents so handlers never compare button labels.
package intent

import "strings"

const (
	ButtonStart      = "▶️ Старт"
	ButtonCalculator = "🧮 Калькулятор стоимости"
	ButtonOrder      = "📝 Сделать заказ"
	ButtonDispatcher = "☎️ Диспетчер"
	ButtonInfo       = "ℹ️ Информация"
	ButtonBack       = "⬅️ В меню"
	ButtonSharePhone = "📱 Отправить мой номер"
)

type Kind int

const (
	KindText Kind = iota
	KindStart
	KindMenu
	KindCalculator
	KindOrder
	KindDispatcher
	KindInfo
	KindBack
	KindHelp
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindMenu:
		return "menu"
	case KindCalculator:
		return "calculator"
	case KindOrder:
		return "order"
	case KindDispatcher:
		return "dispatcher"
	case KindInfo:
		return "info"
	case KindBack:
		return "back"
	case KindHelp:
		return "help"
	}
	return "text"
}

// Intent is a recognized user message. Text holds the trimmed input for KindText.
type Intent struct {
	Kind Kind
	Text string
}

var buttons = map[string]Kind{
	ButtonStart:      KindMenu,
	ButtonCalculator: KindCalculator,
	ButtonOrder:      KindOrder,
	ButtonDispatcher: KindDispatcher,
	ButtonInfo:       KindInfo,
	ButtonBack:       KindBack,
}

var commands = map[string]Kind{
	"/start":      KindStart,
	"/menu":       KindMenu,
	"/calc":       KindCalculator,
	"/order":      KindOrder,
	"/dispatcher": KindDispatcher,
	"/info":       KindInfo,
	"/help":       KindHelp,
}

// Recognize classifies a message. Commands may carry a "@botname" suffix or arguments.
func Recognize(text string) Intent {
	text = strings.TrimSpace(text)
	if k, ok := buttons[text]; ok {
		return Intent{Kind: k}
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		cmd, _, _ = strings.Cut(cmd, "@")
		if k, ok := commands[strings.ToLower(cmd)]; ok {
			return Intent{Kind: k}
		}
	}
	return Intent{Kind: KindText, Text: text}
}

// Navigational reports whether the intent leaves the current dialogue.
func (i Intent) Navigational() bool {
	return i.Kind != KindText
}

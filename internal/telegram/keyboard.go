package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

func (app *BotApp) BuildMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row1 := tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("💳 Тарифы"),
		tgbotapi.NewKeyboardButton("📊 Статус"),
	)

	kb := tgbotapi.NewReplyKeyboard(row1)
	kb.ResizeKeyboard = true
	return kb
}

func buyButton() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Купить VPN", "show_tariffs"),
		),
	)
}

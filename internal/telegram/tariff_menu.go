package telegram

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) sendTariffMenu(ctx context.Context, bot *tgbotapi.BotAPI, chatID int64) {
	tariffs, err := app.TariffService.ListAll(ctx)
	if err != nil {
		log.Printf("[tariff_menu] list fail: %v", err)
		bot.Send(tgbotapi.NewMessage(chatID, "Ошибка загрузки тарифов."))
		return
	}
	if len(tariffs) == 0 {
		bot.Send(tgbotapi.NewMessage(chatID, "Нет доступных тарифов."))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tariffs {
		label := fmt.Sprintf("%s — %s (%d дней)", t.Name, formatRUB(t.Price), t.Days)
		btn := tgbotapi.NewInlineKeyboardButtonData(label, "buy_"+t.Code)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}

	out := tgbotapi.NewMessage(chatID, "Выберите тариф:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	bot.Send(out)
}

// formatRUB форматирует цену: 199 → "199 ₽", 199.5 → "199.50 ₽"
func formatRUB(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f ₽", p)
	}
	s := fmt.Sprintf("%.2f", p)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + " ₽"
}

package notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Infra struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

func NewInfra(bot *tgbotapi.BotAPI, adminChatID int64) *Infra {
	return &Infra{bot: bot, adminChatID: adminChatID}
}

// SetBot — позволяет передать бота ПОСЛЕ того, как он инициализировался
func (i *Infra) SetBot(bot *tgbotapi.BotAPI) {
	i.bot = bot
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	if i.bot == nil || i.adminChatID == 0 {
		log.Printf("[notificator] admin channel not configured: %v (%s)", err, details)
		return nil
	}

	text := fmt.Sprintf(
		"❗ Ошибка в боте\n\nОшибка: %v\n\nДетали: %s",
		err,
		details,
	)

	_, sendErr := i.bot.Send(tgbotapi.NewMessage(i.adminChatID, text))
	if sendErr != nil {
		log.Printf("[notificator] send fail to admin: %v", sendErr)
		return sendErr
	}

	return nil
}

func (i *Infra) UserNotify(ctx context.Context, chatID int64, text string) error {
	if i.bot == nil {
		return fmt.Errorf("bot is not initialized")
	}

	_, err := i.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

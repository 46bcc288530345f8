package telegram

import (
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type BotApp struct {
	LifecycleService ports.LifecycleService
	TariffService    ports.TariffService
	PaymentProvider  ports.PaymentProvider

	bot *tgbotapi.BotAPI
}

func NewBotApp(
	lifecycleService ports.LifecycleService,
	tariffService ports.TariffService,
	paymentProvider ports.PaymentProvider,
) *BotApp {

	return &BotApp{
		LifecycleService: lifecycleService,
		TariffService:    tariffService,
		PaymentProvider:  paymentProvider,
	}
}

func (app *BotApp) InitBot() error {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("init bot: %w", err)
	}

	app.bot = bot
	return nil
}

func (app *BotApp) GetBot() *tgbotapi.BotAPI {
	return app.bot
}

// Run — блокирующий цикл апдейтов
func (app *BotApp) Run() {
	app.runBotLoop(app.bot)
}

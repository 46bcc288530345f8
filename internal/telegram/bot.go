package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vovarama1992/vpn_access_bot/internal/domain"
	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

// runBotLoop — главный цикл получения апдейтов
func (app *BotApp) runBotLoop(bot *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := bot.GetUpdatesChan(u)
	log.Printf("[bot_loop] started username=@%s", bot.Self.UserName)

	for update := range updates {
		ctx := context.Background()

		switch {
		case update.Message != nil && update.Message.From != nil:
			go app.handleMessage(ctx, bot, update.Message)
		case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
			go app.handleCallback(ctx, bot, update.CallbackQuery)
		}
	}
}

func (app *BotApp) handleMessage(
	ctx context.Context,
	bot *tgbotapi.BotAPI,
	msg *tgbotapi.Message,
) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID
	textLower := strings.ToLower(msg.Text)

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		app.handleStart(ctx, bot, msg)

	case msg.IsCommand() && msg.Command() == "check_payment":
		app.handleCheckPayment(ctx, bot, chatID, tgID)

	case strings.Contains(textLower, "тариф"), strings.Contains(textLower, "купить"):
		app.sendTariffMenu(ctx, bot, chatID)

	case strings.Contains(textLower, "статус"):
		app.handleCheckPayment(ctx, bot, chatID, tgID)

	default:
		out := tgbotapi.NewMessage(chatID, "Команды: /start — статус и конфигурация, /check_payment — проверка оплаты.")
		out.ReplyMarkup = app.BuildMainKeyboard()
		bot.Send(out)
	}
}

func (app *BotApp) handleStart(
	ctx context.Context,
	bot *tgbotapi.BotAPI,
	msg *tgbotapi.Message,
) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID

	username := msg.From.UserName
	if username == "" {
		username = "unknown"
	}

	isNew, _, err := app.LifecycleService.EnsureRegistered(ctx, tgID, username)
	if err != nil {
		log.Printf("[bot] register fail tg=%d: %v", tgID, err)
		bot.Send(tgbotapi.NewMessage(chatID, "Сервис временно недоступен, попробуйте позже."))
		return
	}

	e, err := app.LifecycleService.GetEffectiveStatus(ctx, tgID)
	if err != nil {
		log.Printf("[bot] status fail tg=%d: %v", tgID, err)
		bot.Send(tgbotapi.NewMessage(chatID, "Сервис временно недоступен, попробуйте позже."))
		return
	}

	out := tgbotapi.NewMessage(chatID, app.buildStatusText(e, isNew))
	out.ReplyMarkup = buyButton()
	bot.Send(out)

	kb := tgbotapi.NewMessage(chatID, "Действия: кнопка ниже — купить или продлить подписку.")
	kb.ReplyMarkup = app.BuildMainKeyboard()
	bot.Send(kb)
}

func (app *BotApp) buildStatusText(e *ports.Entitlement, isNew bool) string {
	daysLeft := domain.DaysLeft(e, time.Now())

	switch {
	case isNew:
		return fmt.Sprintf(
			"Добро пожаловать!\nВы получили бесплатный пробный период на %d дней.\n\n"+
				"Ваша конфигурация VPN (скопируйте строку):\n%s",
			daysLeft, e.AccessConfig,
		)
	case e.Status == ports.StatusTrial:
		return fmt.Sprintf(
			"Ваш пробный период активен\nОсталось: %d дней\n\n"+
				"Ваша конфигурация VPN (скопируйте строку):\n%s",
			daysLeft, e.AccessConfig,
		)
	case e.Status == ports.StatusActive:
		return fmt.Sprintf(
			"Ваша подписка активна\nОсталось: %d дней\n\n"+
				"Ваша конфигурация VPN (скопируйте строку):\n%s",
			daysLeft, e.AccessConfig,
		)
	default:
		return fmt.Sprintf(
			"Ваш пробный период истёк\nОформите подписку, чтобы продолжить.\n\n"+
				"Ваша конфигурация VPN (неактивна, скопируйте для последующего использования):\n%s",
			e.AccessConfig,
		)
	}
}

func (app *BotApp) handleCheckPayment(
	ctx context.Context,
	bot *tgbotapi.BotAPI,
	chatID int64,
	tgID int64,
) {
	e, err := app.LifecycleService.GetEffectiveStatus(ctx, tgID)
	if err == ports.ErrEntitlementNotFound {
		bot.Send(tgbotapi.NewMessage(chatID, "Вы ещё не зарегистрированы. Нажмите /start."))
		return
	}
	if err != nil {
		log.Printf("[bot] check_payment fail tg=%d: %v", tgID, err)
		bot.Send(tgbotapi.NewMessage(chatID, "Сервис временно недоступен, попробуйте позже."))
		return
	}

	switch e.Status {
	case ports.StatusActive:
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"Подписка активна, осталось %d дней.", domain.DaysLeft(e, time.Now()),
		)))
	case ports.StatusTrial:
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"Пробный период, осталось %d дней. Оплата пока не подтверждена.",
			domain.DaysLeft(e, time.Now()),
		)))
	default:
		bot.Send(tgbotapi.NewMessage(chatID,
			"Подписка неактивна. Оплата пока не подтверждена — после оплаты бот пришлёт уведомление.",
		))
	}
}

func (app *BotApp) handleCallback(
	ctx context.Context,
	bot *tgbotapi.BotAPI,
	cb *tgbotapi.CallbackQuery,
) {
	chatID := cb.Message.Chat.ID
	tgID := cb.From.ID

	bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	switch {
	case cb.Data == "show_tariffs":
		app.sendTariffMenu(ctx, bot, chatID)

	case strings.HasPrefix(cb.Data, "buy_"):
		app.handleBuy(ctx, bot, chatID, tgID, strings.TrimPrefix(cb.Data, "buy_"))
	}
}

func (app *BotApp) handleBuy(
	ctx context.Context,
	bot *tgbotapi.BotAPI,
	chatID int64,
	tgID int64,
	code string,
) {
	plan, err := app.TariffService.GetByCode(ctx, code)
	if err != nil || plan == nil {
		log.Printf("[bot] buy: plan %q not found (err=%v)", code, err)
		bot.Send(tgbotapi.NewMessage(chatID, "Ошибка: выбранный тариф недоступен."))
		return
	}

	payURL, err := app.PaymentProvider.CreatePaymentURL(ctx, tgID, plan)
	if err != nil {
		log.Printf("[bot] buy: payment url fail tg=%d plan=%s: %v", tgID, code, err)
		bot.Send(tgbotapi.NewMessage(chatID, "Не удалось создать платёжную ссылку, попробуйте позже."))
		return
	}

	bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Оплатите подписку\nТариф: %s за %s.\nПерейдите по ссылке для оплаты:\n%s\n\n"+
			"После оплаты используйте /check_payment для проверки статуса.",
		plan.Name, formatRUB(plan.Price), payURL,
	)))
}

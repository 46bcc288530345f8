package notificator

import "context"

type Notificator interface {
	// Notify — отправляет сообщение об ошибке админу
	Notify(ctx context.Context, err error, details string) error

	// UserNotify — сообщение пользователю в чат
	UserNotify(ctx context.Context, chatID int64, text string) error
}

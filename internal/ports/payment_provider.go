package ports

import "context"

type PaymentProvider interface {
	// Возвращает redirect URL для оплаты тарифа.
	// label платежа кодирует аккаунт и срок: user_<account_id>_<days>
	CreatePaymentURL(ctx context.Context, accountID int64, plan *TariffPlan) (string, error)
}

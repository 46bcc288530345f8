package ports

import "context"

// AppliedPaymentsRepo — учёт применённых operation_id,
// защита от повторной доставки уведомления провайдером
type AppliedPaymentsRepo interface {
	// Claim — true, если operation_id ещё не применялся
	Claim(ctx context.Context, accountID int64, operationID string) (bool, error)

	// Release — снимает отметку (renew не прошёл, ждём ретрай провайдера)
	Release(ctx context.Context, operationID string) error
}
